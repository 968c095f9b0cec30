package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// emitEvent emits a module event through the context's event manager, the
// same one-liner x/dex/keeper and x/oracle/keeper use throughout.
func emitEvent(ctx context.Context, eventType string, attrs ...sdk.Attribute) {
	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(eventType, attrs...),
	)
}
