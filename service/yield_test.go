package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/models"
	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/service"
)

func TestConstantCouponYield(t *testing.T) {
	bond := &models.Bond{CouponRate: dec("8.5")}

	assert.True(t, service.ConstantCouponYield(bond, dec("100")).Equal(dec("8.5")))
	// Price below par raises the current yield.
	assert.True(t, service.ConstantCouponYield(bond, dec("85")).Equal(dec("10")))
	// Price above par lowers it.
	assert.True(t, service.ConstantCouponYield(bond, dec("106.25")).Equal(dec("8")))

	assert.True(t, service.ConstantCouponYield(bond, dec("0")).IsZero())
	assert.True(t, service.ConstantCouponYield(bond, dec("-5")).IsZero())
}
