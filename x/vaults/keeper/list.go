package keeper

import (
	"context"

	"cosmossdk.io/math"

	"github.com/paw-chain/paw/x/vaults/types"
)

// This file implements spec.md §4.1: the caller-assisted sorted-list
// invariant. The engine never scans the list; callers supply prev_key (the
// predecessor of the vault's current position, or None iff the vault is
// currently lowest) and new_prev_key (the predecessor of the new position),
// and every mutating entry point cross-checks these against the persisted
// topology before accepting them.

// validateVaultKeyIdentity enforces the first row of spec.md §4.1's table:
// target.index == vault_key.index.
func validateVaultKeyIdentity(vaultKey types.VaultKey, target types.Vault) error {
	if !vaultKey.Index.Equal(target.Index) {
		return types.ErrIndexProvidedIsNotTheOneSaved.Wrapf(
			"provided index %s does not match the saved index %s", vaultKey.Index, target.Index)
	}
	return nil
}

func validateDenominationMatch(ref *types.VaultKey, denomination string) error {
	if ref == nil {
		return nil
	}
	if ref.Denomination != denomination {
		return types.ErrInvalidPrevKeyDenomination.Wrapf(
			"expected denomination %q, got %q", denomination, ref.Denomination)
	}
	return nil
}

// validatePrevKey checks prev_key against the persisted topology for the
// vault currently being detached (spec.md §4.1 rows 2-4).
func (k Keeper) validatePrevKey(ctx context.Context, prevKey *types.VaultKey, target types.Vault, vi types.VaultsInfo) error {
	if err := validateDenominationMatch(prevKey, target.Denomination); err != nil {
		return err
	}

	if prevKey == nil {
		if vi.LowestKey == nil || !vi.LowestKey.Equal(target.Key()) {
			return types.ErrPrevVaultCantBeNone.Wrap("prev_key is None but the target is not the current lowest vault")
		}
		return nil
	}

	prevVault, err := k.GetVault(ctx, *prevKey)
	if err != nil {
		return types.ErrPrevVaultDoesntExist.Wrapf("prev_key %+v: %v", *prevKey, err)
	}
	targetKey := target.Key()
	if prevVault.NextKey == nil || !prevVault.NextKey.Equal(targetKey) {
		return types.ErrPrevVaultNextIndexIsInvalid.Wrap("prev vault's next_key does not point at the target vault")
	}
	return nil
}

// validateNewPrevKey checks new_prev_key against the persisted topology for
// the position the vault is about to be inserted at (spec.md §4.1 row 5).
func (k Keeper) validateNewPrevKey(ctx context.Context, newPrevKey *types.VaultKey, newIndex math.Int, denomination string) error {
	if err := validateDenominationMatch(newPrevKey, denomination); err != nil {
		return err
	}
	if newPrevKey == nil {
		return nil
	}

	newPrevVault, err := k.GetVault(ctx, *newPrevKey)
	if err != nil {
		return types.ErrPrevVaultDoesntExist.Wrapf("new_prev_key %+v: %v", *newPrevKey, err)
	}
	if newPrevVault.Index.GT(newIndex) {
		return types.ErrInvalidPrevVaultIndex.Wrap("new_prev_key's index is greater than the new index")
	}
	if newPrevVault.NextKey != nil && newPrevVault.NextKey.Index.LT(newIndex) {
		return types.ErrPrevVaultNextIndexIsInvalid.Wrap("new_prev_key's successor has an index lower than the new index")
	}
	return nil
}

// requireNilOnRemoval enforces spec.md §4.1's last row: when removing a
// vault entirely (full payoff or liquidation), new_prev_key must be None.
func requireNilOnRemoval(newPrevKey *types.VaultKey) error {
	if newPrevKey != nil {
		return types.ErrNextPrevVaultShouldBeNone.Wrap("new_prev_key must be None when removing a vault")
	}
	return nil
}

// detach removes the target vault from the sorted list, rewriting the
// predecessor's next_key (or VaultsInfo.LowestKey) to skip over it, and
// deletes the target's primary record. It does not touch the secondary
// index or VaultsInfo totals; callers own those.
func (k Keeper) detach(ctx context.Context, prevKey *types.VaultKey, target types.Vault, vi *types.VaultsInfo) error {
	if prevKey == nil {
		vi.LowestKey = target.NextKey
	} else {
		prevVault, err := k.GetVault(ctx, *prevKey)
		if err != nil {
			return err
		}
		prevVault.NextKey = target.NextKey
		k.setVault(ctx, prevVault)
	}
	k.deleteVault(ctx, target.Key())
	return nil
}

// insert splices a vault (already carrying its new index) into the sorted
// list at the validated new_prev_key position, updates VaultsInfo.LowestKey
// if needed, persists the vault record, and updates the secondary index.
func (k Keeper) insert(ctx context.Context, newPrevKey *types.VaultKey, v types.Vault, vi *types.VaultsInfo) {
	if newPrevKey == nil {
		v.NextKey = vi.LowestKey
		key := v.Key()
		vi.LowestKey = &key
	} else {
		newPrevVault, err := k.GetVault(ctx, *newPrevKey)
		if err != nil {
			// validateNewPrevKey already proved this exists; a failure here
			// would mean the store changed underneath us within the same
			// transaction, which never happens.
			panic(err)
		}
		v.NextKey = newPrevVault.NextKey
		key := v.Key()
		newPrevVault.NextKey = &key
		k.setVault(ctx, newPrevVault)
	}
	k.setVault(ctx, v)
	k.setVaultIndexKey(ctx, v.Account, v.Denomination, v.Key())
}

// reposition is the detach-recompute-insert sequence spec.md §4.1 describes
// for every mutating operation whose index changes: validate prev_key
// against the vault's current position, detach it, then validate and insert
// it at new_prev_key under its (possibly new) index. `updated` must already
// carry the new Index.
func (k Keeper) reposition(ctx context.Context, prevKey *types.VaultKey, current types.Vault, newPrevKey *types.VaultKey, updated types.Vault, vi *types.VaultsInfo) error {
	if err := k.validatePrevKey(ctx, prevKey, current, *vi); err != nil {
		return err
	}
	if err := k.validateNewPrevKey(ctx, newPrevKey, updated.Index, current.Denomination); err != nil {
		return err
	}
	if err := k.detach(ctx, prevKey, current, vi); err != nil {
		return err
	}
	k.insert(ctx, newPrevKey, updated, vi)
	return nil
}

// removeFromList detaches and destroys a vault without reinserting it,
// used by a full pay_debt payoff and by liquidate. new_prev_key must be
// None per spec.md §4.1's last row.
func (k Keeper) removeFromList(ctx context.Context, prevKey *types.VaultKey, newPrevKey *types.VaultKey, target types.Vault, vi *types.VaultsInfo) error {
	if err := requireNilOnRemoval(newPrevKey); err != nil {
		return err
	}
	if err := k.validatePrevKey(ctx, prevKey, target, *vi); err != nil {
		return err
	}
	if err := k.detach(ctx, prevKey, target, vi); err != nil {
		return err
	}
	k.deleteVaultIndexKey(ctx, target.Account, target.Denomination)
	return nil
}
