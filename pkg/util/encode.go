package util

import "github.com/ethereum/go-ethereum/accounts/abi"

// EncodeString ABI encodes str as a single string parameter, matching abi.encode(string) in Solidity.
func EncodeString(str string) ([]byte, error) {
	// Define the ABI for a single string parameter
	stringType, err := abi.NewType("string", "", nil)
	if err != nil {
		return nil, err
	}
	arguments := abi.Arguments{{Type: stringType}}

	return arguments.Pack(str)
}
