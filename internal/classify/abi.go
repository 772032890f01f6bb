package classify

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Creation call layouts of the launch contract. Only the inputs matter for decoding,
// so both are parsed as plain functions and unpacked against call data past the selector.
const creationABIJSON = `[
  {
    "inputs": [
      {"internalType": "string", "name": "name", "type": "string"},
      {"internalType": "string", "name": "symbol", "type": "string"},
      {"internalType": "uint256", "name": "totalSupply", "type": "uint256"},
      {"internalType": "uint256", "name": "taxPercentage", "type": "uint256"}
    ],
    "name": "createToken",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint256", "name": "initialBuy", "type": "uint256"},
      {"internalType": "uint256", "name": "curveScaler", "type": "uint256"},
      {"internalType": "uint256", "name": "lpDeployPercent", "type": "uint256"},
      {"internalType": "address", "name": "pairToken", "type": "address"},
      {"internalType": "uint256", "name": "creatorFeeBasisPoints", "type": "uint256"},
      {"internalType": "string", "name": "name", "type": "string"},
      {"internalType": "string", "name": "symbol", "type": "string"},
      {"internalType": "uint256", "name": "totalSupply", "type": "uint256"},
      {"internalType": "address", "name": "creator", "type": "address"}
    ],
    "name": "createTokenWithCurve",
    "outputs": [],
    "stateMutability": "payable",
    "type": "function"
  }
]`

const (
	methodFormatA = "createToken"
	methodFormatB = "createTokenWithCurve"
)

var (
	creationABI     abi.ABI
	creationABIOnce sync.Once
	creationABIErr  error
)

// CreationABI returns the parsed ABI describing both creation call layouts.
func CreationABI() (abi.ABI, error) {
	creationABIOnce.Do(func() {
		creationABI, creationABIErr = abi.JSON(strings.NewReader(creationABIJSON))
	})
	return creationABI, creationABIErr
}
