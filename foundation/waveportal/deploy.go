package waveportal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// Artifact is the compiled form of the contract needed for deployment.
type Artifact struct {
	Name     string
	ABI      abi.ABI
	Bytecode []byte
}

// LoadArtifact reads a Hardhat style artifact file which carries the ABI and
// the creation bytecode. When the artifact has no ABI the embedded one is used.
func LoadArtifact(path string) (Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("reading artifact: %w", err)
	}

	var doc struct {
		ContractName string          `json:"contractName"`
		ABI          json.RawMessage `json:"abi"`
		Bytecode     string          `json:"bytecode"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Artifact{}, fmt.Errorf("decoding artifact: %w", err)
	}

	code, err := hexutil.Decode(doc.Bytecode)
	if err != nil {
		return Artifact{}, fmt.Errorf("decoding bytecode: %w", err)
	}
	if len(code) == 0 {
		return Artifact{}, errors.New("artifact has no bytecode")
	}

	var parsed abi.ABI
	switch len(doc.ABI) {
	case 0:
		if parsed, err = ParseABI(); err != nil {
			return Artifact{}, err
		}
	default:
		if parsed, err = abi.JSON(bytes.NewReader(doc.ABI)); err != nil {
			return Artifact{}, fmt.Errorf("parsing artifact abi: %w", err)
		}
	}

	art := Artifact{
		Name:     doc.ContractName,
		ABI:      parsed,
		Bytecode: code,
	}

	return art, nil
}

// Deployment describes a contract that was deployed and mined.
type Deployment struct {
	Address     common.Address `json:"address"`
	TxHash      common.Hash    `json:"tx_hash"`
	BlockNumber uint64         `json:"block_number"`
	DeployedAt  time.Time      `json:"deployed_at"`
}

// Deploy creates the contract funded with the specified value and waits for
// the creation transaction to be mined.
func Deploy(ctx context.Context, opts *bind.TransactOpts, backend Backend, art Artifact, value *big.Int) (Deployment, error) {
	opts.Context = ctx
	opts.Value = value

	address, tx, _, err := bind.DeployContract(opts, art.ABI, art.Bytecode, backend)
	if err != nil {
		return Deployment{}, fmt.Errorf("deploy contract: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, backend, tx)
	if err != nil {
		return Deployment{}, fmt.Errorf("wait deployed %s: %w", tx.Hash(), err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return Deployment{}, fmt.Errorf("deploy tx %s: %w", tx.Hash(), ErrReverted)
	}

	if receipt.ContractAddress != (common.Address{}) {
		address = receipt.ContractAddress
	}

	code, err := backend.CodeAt(ctx, address, nil)
	if err != nil {
		return Deployment{}, fmt.Errorf("checking code at %s: %w", address, err)
	}
	if len(code) == 0 {
		return Deployment{}, fmt.Errorf("no code at %s after deployment", address)
	}

	dpl := Deployment{
		Address:     address,
		TxHash:      tx.Hash(),
		BlockNumber: receipt.BlockNumber.Uint64(),
		DeployedAt:  time.Now().UTC(),
	}

	return dpl, nil
}
