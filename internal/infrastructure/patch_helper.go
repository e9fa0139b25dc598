package infrastructure

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/Victor-armando18/marketplace-rules/internal/domain/discount"
	"github.com/Victor-armando18/marketplace-rules/internal/domain/policy"
)

// ApplyDiscountPatch takes the original discount spec and an RFC 6902 patch
// (percentage change, description change, new predicate) and returns the
// amended spec. The caller rebuilds and re-registers the node.
func ApplyDiscountPatch(original discount.Spec, patchData []byte) (discount.Spec, error) {
	originalJSON, _ := json.Marshal(original)

	patch, err := jsonpatch.DecodePatch(patchData)
	if err != nil {
		return original, fmt.Errorf("failed to decode patch: %w", err)
	}

	modifiedJSON, err := patch.Apply(originalJSON)
	if err != nil {
		return original, fmt.Errorf("failed to apply patch: %w", err)
	}

	var updated discount.Spec
	if err := json.Unmarshal(modifiedJSON, &updated); err != nil {
		return original, err
	}

	return updated, nil
}

// ApplyPolicyPatch mirrors ApplyDiscountPatch for policy specs.
func ApplyPolicyPatch(original policy.Spec, patchData []byte) (policy.Spec, error) {
	originalJSON, _ := json.Marshal(original)

	patch, err := jsonpatch.DecodePatch(patchData)
	if err != nil {
		return original, fmt.Errorf("failed to decode patch: %w", err)
	}

	modifiedJSON, err := patch.Apply(originalJSON)
	if err != nil {
		return original, fmt.Errorf("failed to apply patch: %w", err)
	}

	var updated policy.Spec
	if err := json.Unmarshal(modifiedJSON, &updated); err != nil {
		return original, err
	}

	return updated, nil
}
