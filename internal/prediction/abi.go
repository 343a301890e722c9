package prediction

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Subset of the PancakeSwap Prediction V2 ABI used by the bot.
const predictionABIJSON = `[
  {
    "inputs": [{"internalType": "uint256", "name": "epoch", "type": "uint256"}],
    "name": "betBear",
    "outputs": [],
    "stateMutability": "payable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "epoch", "type": "uint256"}],
    "name": "betBull",
    "outputs": [],
    "stateMutability": "payable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256[]", "name": "epochs", "type": "uint256[]"}],
    "name": "claim",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint256", "name": "epoch", "type": "uint256"},
      {"internalType": "address", "name": "user", "type": "address"}
    ],
    "name": "claimable",
    "outputs": [{"internalType": "bool", "name": "", "type": "bool"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "currentEpoch",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "minBetAmount",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

var (
	predictionABI     abi.ABI
	predictionABIOnce sync.Once
	predictionABIErr  error
)

// ABI returns the parsed prediction contract ABI.
func ABI() (abi.ABI, error) {
	predictionABIOnce.Do(func() {
		predictionABI, predictionABIErr = abi.JSON(strings.NewReader(predictionABIJSON))
	})
	return predictionABI, predictionABIErr
}
