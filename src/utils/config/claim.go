package config

import (
	"github.com/spf13/viper"
)

type Claim struct {
	// Private key dedicated to signing claim authorizations.
	// The on-chain contract recovers this key's address from the signature.
	SignerPrivateKey string

	// Substitutes a placeholder signer key and synthesizes eligibility
	// when no participation record exists. Must stay false outside local
	// development, there is no other switch guarding the bypass.
	AllowUnsafeTestMode bool
}

func setClaimDefaults() {
	viper.SetDefault("Claim.AllowUnsafeTestMode", "false")
}
