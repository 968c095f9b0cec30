package keeper

import (
	"encoding/json"

	"github.com/paw-chain/paw/x/vaults/types"
)

// This module has no generated protobuf types (see DESIGN.md): records are
// encoded with encoding/json, which round-trips math.Int and sdk.AccAddress
// correctly via their own MarshalJSON/UnmarshalJSON implementations. Every
// store value in this module is one of the small handful of record types
// below, so a single pattern per type is all that's needed.

func encodeCoreState(cs types.CoreState) []byte {
	bz, err := json.Marshal(cs)
	if err != nil {
		panic(err)
	}
	return bz
}

func decodeCoreState(bz []byte) (types.CoreState, error) {
	var cs types.CoreState
	if err := json.Unmarshal(bz, &cs); err != nil {
		return types.CoreState{}, err
	}
	return cs, nil
}

func encodeCurrency(c types.Currency) []byte {
	bz, err := json.Marshal(c)
	if err != nil {
		panic(err)
	}
	return bz
}

func decodeCurrency(bz []byte) (types.Currency, error) {
	var c types.Currency
	if err := json.Unmarshal(bz, &c); err != nil {
		return types.Currency{}, err
	}
	return c, nil
}

func encodeVaultsInfo(vi types.VaultsInfo) []byte {
	bz, err := json.Marshal(vi)
	if err != nil {
		panic(err)
	}
	return bz
}

func decodeVaultsInfo(bz []byte) (types.VaultsInfo, error) {
	var vi types.VaultsInfo
	if err := json.Unmarshal(bz, &vi); err != nil {
		return types.VaultsInfo{}, err
	}
	return vi, nil
}

func encodeVault(v types.Vault) []byte {
	bz, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return bz
}

func decodeVault(bz []byte) (types.Vault, error) {
	var v types.Vault
	if err := json.Unmarshal(bz, &v); err != nil {
		return types.Vault{}, err
	}
	return v, nil
}

func encodeVaultKey(k types.VaultKey) []byte {
	bz, err := json.Marshal(k)
	if err != nil {
		panic(err)
	}
	return bz
}

func decodeVaultKey(bz []byte) (types.VaultKey, error) {
	var k types.VaultKey
	if err := json.Unmarshal(bz, &k); err != nil {
		return types.VaultKey{}, err
	}
	return k, nil
}
