package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/paw/x/vaults/types"
)

// SetNextKey implements spec.md §4.1/§6.1's protocol-manager escape hatch:
// it rewrites a vault's next_key directly, after only checking that the
// target (and, if given, the new successor) exist. It does not touch
// VaultsInfo.LowestKey or any totals, and it does not re-validate sort
// order — it is meant to repair topology a bug already broke, not to move
// a vault through the normal insertion path.
func (k Keeper) SetNextKey(ctx context.Context, protocolManager string, target types.VaultKey, next *types.VaultKey) error {
	cs, err := k.GetCoreState(ctx)
	if err != nil {
		return err
	}
	if protocolManager != cs.ProtocolManager {
		return types.ErrUnauthorized.Wrap("only protocol_manager may set next_key directly")
	}

	targetVault, err := k.GetVault(ctx, target)
	if err != nil {
		return err
	}
	if next != nil {
		if !k.hasVault(ctx, *next) {
			return types.ErrVaultDoesntExist.Wrapf("next key %+v", *next)
		}
	}

	targetVault.NextKey = next
	k.setVault(ctx, targetVault)

	emitEvent(ctx, types.EventTypeVaultsNextKeySet,
		sdk.NewAttribute(types.AttributeKeyAccount, target.Account.String()),
		sdk.NewAttribute(types.AttributeKeyDenomination, target.Denomination),
	)
	return nil
}
