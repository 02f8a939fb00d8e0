package contract

import (
	"bytes"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"golang.org/x/crypto/sha3"
)

// Contract members magi relies on.
const (
	MethodTotalMinted = "getTotalNFTsMintedSoFar"
	MethodMint        = "makeAnEpicNFT"
	EventMinted       = "NewEpicNFTMinted"

	mintedSignature = "NewEpicNFTMinted(address,uint256)"
)

// ErrIncompatibleABI is returned when an ABI lacks a member magi needs.
var ErrIncompatibleABI = errors.New("ABI is not a MyEpicNFT contract")

//go:embed artifacts/MyEpicNFT.json
var embeddedArtifact []byte

// DefaultABI returns the ABI of the MyEpicNFT artifact shipped in the binary.
func DefaultABI() abi.ABI {
	parsed, err := ParseArtifact(embeddedArtifact)
	if err != nil {
		panic(fmt.Sprintf("embedded MyEpicNFT artifact: %v", err))
	}
	return parsed
}

// LoadArtifact reads an ABI from path. The file may be either:
//   - a raw ABI JSON array: [{"type":"function",...}, ...]
//   - a Hardhat/Foundry artifact: {"abi":[...],"bytecode":"0x...",...}
func LoadArtifact(path string) (abi.ABI, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("cannot read ABI file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return abi.ABI{}, fmt.Errorf("ABI file is empty: %s", path)
	}
	parsed, err := ParseArtifact(data)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("%s: %w", path, err)
	}
	return parsed, nil
}

// ParseArtifact parses artifact or raw ABI bytes and checks that the result
// exposes the counter, the mint function and the mint event.
func ParseArtifact(data []byte) (abi.ABI, error) {
	raw := data

	// Detect a Hardhat/Foundry artifact (object with an "abi" key).
	var artifact struct {
		ABI json.RawMessage `json:"abi"`
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &artifact); err != nil {
			return abi.ABI{}, fmt.Errorf("invalid artifact JSON: %w", err)
		}
		if len(artifact.ABI) < 2 || artifact.ABI[0] != '[' {
			return abi.ABI{}, fmt.Errorf("file is a JSON object without an \"abi\" array")
		}
		raw = artifact.ABI
	}

	parsed, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("invalid ABI JSON: %w", err)
	}
	if err := validateABI(parsed); err != nil {
		return abi.ABI{}, err
	}
	return parsed, nil
}

func validateABI(parsed abi.ABI) error {
	counter, ok := parsed.Methods[MethodTotalMinted]
	if !ok {
		return fmt.Errorf("%w: missing %s()", ErrIncompatibleABI, MethodTotalMinted)
	}
	if !counter.IsConstant() || len(counter.Outputs) != 1 {
		return fmt.Errorf("%w: %s must be a view returning one value", ErrIncompatibleABI, MethodTotalMinted)
	}

	mint, ok := parsed.Methods[MethodMint]
	if !ok {
		return fmt.Errorf("%w: missing %s()", ErrIncompatibleABI, MethodMint)
	}
	if len(mint.Inputs) != 0 || mint.IsConstant() {
		return fmt.Errorf("%w: %s must be a state-changing function without arguments", ErrIncompatibleABI, MethodMint)
	}

	ev, ok := parsed.Events[EventMinted]
	if !ok {
		return fmt.Errorf("%w: missing event %s", ErrIncompatibleABI, EventMinted)
	}
	if "0x"+hex.EncodeToString(ev.ID.Bytes()) != eventTopic(mintedSignature) {
		return fmt.Errorf("%w: event signature is %s, want %s", ErrIncompatibleABI, ev.Sig, mintedSignature)
	}
	return nil
}

// eventTopic returns the keccak256 topic of an event signature.
func eventTopic(sig string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	return "0x" + hex.EncodeToString(h.Sum(nil))
}
