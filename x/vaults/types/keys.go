package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	// ModuleName defines the module name
	ModuleName = "vaults"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// MemStoreKey defines the in-memory store key, used for caches that
	// never need to survive a restart (currently unused, kept for parity
	// with sibling modules that mount one)
	MemStoreKey = "mem_vaults"

	// RouterKey is the message route for the vaults module.
	RouterKey = ModuleName

	// QuerierRoute defines the module's query routing key.
	QuerierRoute = ModuleName
)

// ModuleNamespace is the namespace byte for the vaults module, mirroring the
// two-byte {module, entity} prefix convention x/dex/types/keys.go uses.
var ModuleNamespace = byte(0x05)

var (
	// CoreStateKey stores the single process-wide CoreState record.
	CoreStateKey = []byte{0x05, 0x01}

	// CurrencyKeyPrefix prefixes Currency records keyed by denomination tag.
	CurrencyKeyPrefix = []byte{0x05, 0x02}

	// VaultsInfoKeyPrefix prefixes VaultsInfo records keyed by denomination tag.
	VaultsInfoKeyPrefix = []byte{0x05, 0x03}

	// VaultKeyPrefix prefixes Vault records keyed by the full VaultKey
	// (index, account, denomination).
	VaultKeyPrefix = []byte{0x05, 0x04}

	// VaultIndexKeyPrefix prefixes the secondary (account, denomination) ->
	// VaultKey lookup.
	VaultIndexKeyPrefix = []byte{0x05, 0x05}

	// ParamsKey stores the module's Params.
	ParamsKey = []byte{0x05, 0x06}
)

// GetCurrencyKey returns the store key for a Currency record.
func GetCurrencyKey(denomination string) []byte {
	return append(append([]byte{}, CurrencyKeyPrefix...), []byte(denomination)...)
}

// GetVaultsInfoKey returns the store key for a VaultsInfo record.
func GetVaultsInfoKey(denomination string) []byte {
	return append(append([]byte{}, VaultsInfoKeyPrefix...), []byte(denomination)...)
}

// GetVaultIndexKey returns the store key for the secondary (account,
// denomination) -> VaultKey lookup.
func GetVaultIndexKey(account sdk.AccAddress, denomination string) []byte {
	key := append([]byte{}, VaultIndexKeyPrefix...)
	key = append(key, account.Bytes()...)
	key = append(key, []byte("/")...)
	key = append(key, []byte(denomination)...)
	return key
}

// GetVaultKey returns the store key for a Vault record given its full
// VaultKey. The index is encoded big-endian so that byte-lexicographic
// store ordering agrees with numeric ordering, even though the engine never
// relies on store iteration order to walk the list (next_key does that).
func GetVaultKey(key VaultKey) []byte {
	indexBytes := make([]byte, 16)
	bi := key.Index.BigInt()
	bi.FillBytes(indexBytes)

	out := append([]byte{}, VaultKeyPrefix...)
	out = append(out, indexBytes...)
	out = append(out, key.Account.Bytes()...)
	out = append(out, []byte("/")...)
	out = append(out, []byte(key.Denomination)...)
	return out
}
