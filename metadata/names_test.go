/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNames(t *testing.T) {
	tests := []struct {
		name   string
		short  string
		pkg    string
		stdlib bool
	}{
		{"example.com/shop.Order", "Order", "example.com/shop", false},
		{"example.com/shop/v2.Order", "Order", "example.com/shop/v2", false},
		{"time.Time", "Time", "time", true},
		{"net/http.Request", "Request", "net/http", true},
		{"string", "string", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.short, ShortName(tt.name))
			assert.Equal(t, tt.pkg, PackageOf(tt.name))
			assert.Equal(t, tt.stdlib, IsStandardLibrary(tt.name))
		})
	}
}

func TestQualify(t *testing.T) {
	assert.Equal(t, "example.com/shop.Order", Qualify("example.com/shop", "Order"))
	assert.Equal(t, "example.com/billing.Invoice", Qualify("example.com/shop", "example.com/billing.Invoice"))
	assert.Equal(t, "Order", Qualify("", "Order"))
}
