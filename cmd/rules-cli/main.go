package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Victor-armando18/marketplace-rules/internal/infrastructure"
	"github.com/Victor-armando18/marketplace-rules/internal/infrastructure/jsonlogic"
	yamlloader "github.com/Victor-armando18/marketplace-rules/internal/infrastructure/yaml"
	"github.com/Victor-armando18/marketplace-rules/pkg/rules"
)

func main() {
	packPath := flag.String("pack", "data/packs/demo_pack.yaml", "rule pack (YAML)")
	basketPath := flag.String("basket", "data/baskets/sample_basket.json", "basket snapshot (JSON)")
	flag.Parse()

	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("   RULES CLI - DIAGNOSTIC TOOL")
	fmt.Println(strings.Repeat("=", 60))

	pack, err := yamlloader.LoadPack(*packPath)
	if err != nil {
		fatalf("could not load pack [%s]: %v", *packPath, err)
	}

	snap, err := loadBasket(*basketPath)
	if err != nil {
		fatalf("could not load basket [%s]: %v", *basketPath, err)
	}

	engine := rules.NewEngine(infrastructure.AllowAllCatalog{}, zerolog.Nop())
	if err := engine.InstallPack(context.Background(), &pack); err != nil {
		fatalf("could not install pack: %v", err)
	}

	summary, err := engine.Checkout(context.Background(), snap)
	if err != nil {
		fatalf("checkout evaluation failed: %v", err)
	}

	displaySummary(pack, summary)
	crossCheckPredicates(pack, snap)
}

func loadBasket(path string) (*rules.BasketSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap rules.BasketSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func displaySummary(pack rules.PackDefinition, summary *rules.CheckoutSummary) {
	fmt.Println("\n[1. POLICY VERDICT]")
	if summary.Allowed {
		fmt.Println("   APPROVED: every active policy passed.")
	} else {
		fmt.Printf("   BLOCKED: policies %v failed.\n", summary.FailedPolicies)
	}

	fmt.Println("\n[2. DISCOUNTS]")
	if len(summary.DiscountAmounts) == 0 {
		fmt.Println("   no discount applied.")
	}
	for id, amount := range summary.DiscountAmounts {
		fmt.Printf("   discount #%d -> %.2f\n", id, amount)
	}

	fmt.Println("\n[3. CHECKOUT SUMMARY]")
	fmt.Printf("   Pack:         %s (%s)\n", pack.Version, pack.Description)
	fmt.Printf("   Total before: %.2f\n", summary.TotalBefore)
	fmt.Printf("   Savings:      %.2f\n", summary.Savings)
	fmt.Printf("   Total after:  %.2f\n", summary.TotalAfter)
	fmt.Printf("   Delta:        %s\n", string(summary.Delta))

	fmt.Println(strings.Repeat("=", 60))
}

// crossCheckPredicates re-evaluates every textual predicate of the pack
// through the JsonLogic exporter and reports disagreements with the native
// evaluator.
func crossCheckPredicates(pack rules.PackDefinition, snap *rules.BasketSnapshot) {
	fmt.Println("\n[4. JSONLOGIC CROSS-CHECK]")
	checked := 0
	for _, store := range pack.Stores {
		for _, sp := range store.Policies {
			checkOne(sp.Predicate, snap, &checked)
		}
		for _, sp := range store.Discounts {
			checkOne(sp.Predicate, snap, &checked)
		}
	}
	if checked == 0 {
		fmt.Println("   no predicates to check.")
	}
	fmt.Println(strings.Repeat("=", 60))
}

func checkOne(predicateText string, snap *rules.BasketSnapshot, checked *int) {
	if predicateText == "" {
		return
	}
	*checked++

	c, err := rules.ParseConstraint(predicateText)
	if err != nil {
		fmt.Printf("   PARSE FAIL  %q: %v\n", predicateText, err)
		return
	}
	native := c.IsSatisfied(snap)
	exported, err := jsonlogic.CrossCheck(c, snap)
	if err != nil {
		fmt.Printf("   EXPORT FAIL %q: %v\n", predicateText, err)
		return
	}
	verdict := "AGREE"
	if native != exported {
		verdict = "MISMATCH"
	}
	fmt.Printf("   %-8s %q native=%v jsonlogic=%v\n", verdict, predicateText, native, exported)
}

func fatalf(format string, args ...any) {
	fmt.Printf("\nERROR: "+format+"\n", args...)
	os.Exit(1)
}
