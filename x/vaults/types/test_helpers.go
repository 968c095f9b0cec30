package types

import (
	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// TestAddr generates a valid bech32 address for testing, following
// x/dex/types/test_helpers.go's pattern.
func TestAddr() sdk.AccAddress {
	privKey := secp256k1.GenPrivKey()
	return sdk.AccAddress(privKey.PubKey().Address())
}
