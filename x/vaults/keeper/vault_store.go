package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/paw/x/vaults/types"
)

// GetVault returns the Vault record at the given VaultKey.
func (k Keeper) GetVault(ctx context.Context, key types.VaultKey) (types.Vault, error) {
	store := k.getStore(ctx)
	bz := store.Get(types.GetVaultKey(key))
	if bz == nil {
		return types.Vault{}, types.ErrVaultDoesntExist.Wrapf("key %+v", key)
	}
	return decodeVault(bz)
}

func (k Keeper) hasVault(ctx context.Context, key types.VaultKey) bool {
	return k.getStore(ctx).Has(types.GetVaultKey(key))
}

// setVault persists a Vault record under its current key.
func (k Keeper) setVault(ctx context.Context, v types.Vault) {
	k.getStore(ctx).Set(types.GetVaultKey(v.Key()), encodeVault(v))
}

// deleteVault removes a Vault record.
func (k Keeper) deleteVault(ctx context.Context, key types.VaultKey) {
	k.getStore(ctx).Delete(types.GetVaultKey(key))
}

// GetVaultIndexKey returns the VaultKey currently registered for
// (account, denomination) via the secondary lookup (spec.md §3's
// VaultIndexKey).
func (k Keeper) GetVaultIndexKey(ctx context.Context, account sdk.AccAddress, denomination string) (types.VaultKey, error) {
	store := k.getStore(ctx)
	bz := store.Get(types.GetVaultIndexKey(account, denomination))
	if bz == nil {
		return types.VaultKey{}, types.ErrVaultDoesntExist.Wrapf("no vault for account %s denomination %q", account, denomination)
	}
	return decodeVaultKey(bz)
}

func (k Keeper) hasVaultIndexKey(ctx context.Context, account sdk.AccAddress, denomination string) bool {
	return k.getStore(ctx).Has(types.GetVaultIndexKey(account, denomination))
}

// setVaultIndexKey writes/updates the secondary lookup.
func (k Keeper) setVaultIndexKey(ctx context.Context, account sdk.AccAddress, denomination string, key types.VaultKey) {
	k.getStore(ctx).Set(types.GetVaultIndexKey(account, denomination), encodeVaultKey(key))
}

// deleteVaultIndexKey removes the secondary lookup.
func (k Keeper) deleteVaultIndexKey(ctx context.Context, account sdk.AccAddress, denomination string) {
	k.getStore(ctx).Delete(types.GetVaultIndexKey(account, denomination))
}

// GetVaultByAccount is the lookup path every entry point in spec.md §4.3
// uses: secondary index -> primary record.
func (k Keeper) GetVaultByAccount(ctx context.Context, account sdk.AccAddress, denomination string) (types.Vault, error) {
	key, err := k.GetVaultIndexKey(ctx, account, denomination)
	if err != nil {
		return types.Vault{}, err
	}
	return k.GetVault(ctx, key)
}
