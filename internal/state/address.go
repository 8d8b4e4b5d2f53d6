package state

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	// ManagerAddress holds every tournament's retained funds.
	ManagerAddress = ModuleAddress("tournament/manager")

	// GapFillerFactoryAddress is the creator used to derive gap filler addresses.
	GapFillerFactoryAddress = ModuleAddress("tournament/gapfiller")
)

// ModuleAddress returns the account address of a built-in module: the last 20
// bytes of keccak256(name), hex encoded with checksum.
func ModuleAddress(name string) string {
	return common.BytesToAddress(crypto.Keccak256([]byte(name))).Hex()
}

// DeriveAddress returns the CREATE-style address of the nonce'th instance
// deployed by creator. creator must be a hex address.
func DeriveAddress(creator string, nonce uint64) string {
	return crypto.CreateAddress(common.HexToAddress(creator), nonce).Hex()
}

// IsContractAddress reports whether addr names a module account or a deployed
// gap filler or ticket registry, in any hex casing. Such accounts never sign.
func (s *State) IsContractAddress(addr string) bool {
	if !common.IsHexAddress(addr) {
		return false
	}
	a := common.HexToAddress(addr).Hex()
	if isModuleAddress(a) {
		return true
	}
	if _, ok := s.GapFillers[a]; ok {
		return true
	}
	_, ok := s.Registries[a]
	return ok
}

func isModuleAddress(addr string) bool {
	if !common.IsHexAddress(addr) {
		return false
	}
	a := common.HexToAddress(addr).Hex()
	return a == ManagerAddress || a == GapFillerFactoryAddress
}
