package merkle_test

import (
	"fmt"

	"github.com/Layr-Labs/merkle-proofs-go/pkg/hashing"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/merkle"
)

func Example() {
	hasher := hashing.NewKeccak256Hasher()
	leaves := [][]byte{[]byte("a"), []byte("b"), []byte("c")}

	tree, err := merkle.NewMerkleTree(leaves, hasher)
	if err != nil {
		panic(err)
	}

	proof, err := tree.GenerateProof(2)
	if err != nil {
		panic(err)
	}

	for _, step := range proof {
		fmt.Println(step.Side)
	}
	fmt.Println(merkle.VerifyProof(hasher, []byte("c"), proof, tree.Root()))
	// Output:
	// right
	// left
	// true
}
