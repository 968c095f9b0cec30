package types

// GenesisState defines the vaults module's genesis state. Vaults themselves
// are not part of genesis (spec.md has no bulk-import story for an
// externally-cursored sorted list); only the singleton CoreState and any
// pre-registered Currencies/VaultsInfo conditions are.
type GenesisState struct {
	CoreState   *CoreState
	Currencies  []Currency
	VaultsInfos []VaultsInfo
}

// DefaultGenesis returns the default genesis state: no CoreState (it is set
// once via `init`), no currencies, no vaults info.
func DefaultGenesis() *GenesisState {
	return &GenesisState{}
}

// Validate performs basic genesis state validation.
func (gs GenesisState) Validate() error {
	if gs.CoreState != nil {
		if err := ValidateFee(gs.CoreState.Fee); err != nil {
			return err
		}
	}

	seen := make(map[string]bool, len(gs.Currencies))
	for _, c := range gs.Currencies {
		if err := ValidateDenomination(c.Denomination); err != nil {
			return ErrInvalidGenesis.Wrap(err.Error())
		}
		if seen[c.Denomination] {
			return ErrInvalidGenesis.Wrapf("duplicate currency %q", c.Denomination)
		}
		seen[c.Denomination] = true
	}

	seenInfo := make(map[string]bool, len(gs.VaultsInfos))
	for _, vi := range gs.VaultsInfos {
		if err := ValidateDenomination(vi.Denomination); err != nil {
			return ErrInvalidGenesis.Wrap(err.Error())
		}
		if seenInfo[vi.Denomination] {
			return ErrInvalidGenesis.Wrapf("duplicate vaults info %q", vi.Denomination)
		}
		seenInfo[vi.Denomination] = true
		if err := vi.ValidateConditions(); err != nil {
			return ErrInvalidGenesis.Wrap(err.Error())
		}
		if vi.TotalVaults != 0 || vi.LowestKey != nil {
			return ErrInvalidGenesis.Wrapf("vaults info %q must start empty at genesis", vi.Denomination)
		}
	}
	return nil
}
