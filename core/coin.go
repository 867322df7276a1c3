package core

// Name is the human-readable name of the coin.
const Name = "Synthron"

// Code is the ticker symbol for the coin.
const Code = "SYNN"

// RewardHalvingPeriod is how many blocks occur before the coinbase subsidy
// halves.
const RewardHalvingPeriod = 200_000

// InitialReward is the coinbase subsidy at height 0, prior to any halving,
// denominated in the asset's smallest unit.
const InitialReward uint64 = 5_000_000_000

// BlockRewardAt returns the coinbase subsidy at the given height, applying
// the halving schedule above. Once the shift exceeds 63 the reward is
// permanently zero rather than wrapping. There is no transparent minting
// path: this value is exactly what a block's CoinbaseInherent is required
// to carry (see coinbase.go).
func BlockRewardAt(height uint64) uint64 {
	halves := height / RewardHalvingPeriod
	if halves >= 64 {
		return 0
	}
	return InitialReward >> halves
}
