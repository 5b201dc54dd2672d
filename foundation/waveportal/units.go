package waveportal

import (
	"fmt"
	"math/big"
)

// weiPerEther is 10^18.
var weiPerEther = new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

// ToWei converts a decimal ether amount like "0.001" into wei.
func ToWei(ether string) (*big.Int, error) {
	r, ok := new(big.Rat).SetString(ether)
	if !ok {
		return nil, fmt.Errorf("invalid ether amount %q", ether)
	}

	if r.Sign() < 0 {
		return nil, fmt.Errorf("negative ether amount %q", ether)
	}

	r.Mul(r, weiPerEther)
	if !r.IsInt() {
		return nil, fmt.Errorf("ether amount %q is finer than one wei", ether)
	}

	return new(big.Int).Set(r.Num()), nil
}
