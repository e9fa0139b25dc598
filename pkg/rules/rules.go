// Package rules is the embeddable surface of the policy & discount engine
// for external applications: snapshot types, declarative specs and the
// engine facade, re-exported from the internal packages.
package rules

import (
	"github.com/rs/zerolog"

	"github.com/Victor-armando18/marketplace-rules/internal/domain"
	"github.com/Victor-armando18/marketplace-rules/internal/domain/constraint"
	"github.com/Victor-armando18/marketplace-rules/internal/domain/discount"
	"github.com/Victor-armando18/marketplace-rules/internal/domain/policy"
	"github.com/Victor-armando18/marketplace-rules/internal/interfaces"
	"github.com/Victor-armando18/marketplace-rules/internal/usecase"
)

type (
	BasketSnapshot = domain.BasketSnapshot
	ProductLine    = domain.ProductLine
	CategoryView   = domain.CategoryView
	UserView       = domain.UserView
	Address        = domain.Address

	Constraint     = constraint.Constraint
	Discount       = discount.Discount
	PurchasePolicy = policy.PurchasePolicy

	DiscountSpec = discount.Spec
	PolicySpec   = policy.Spec

	CatalogView     = interfaces.CatalogView
	PackDefinition  = interfaces.PackDefinition
	StorePack       = interfaces.StorePack
	PackLoader      = interfaces.PackLoader
	EngineFacade    = interfaces.EngineFacade
	CheckoutSummary = interfaces.CheckoutSummary

	Engine = usecase.EngineService
)

// NewEngine builds an engine facade without metrics; pass a zerolog.Nop()
// logger to silence it.
func NewEngine(catalog CatalogView, log zerolog.Logger) *Engine {
	return usecase.NewEngineService(catalog, nil, log)
}

// ParseConstraint builds a validated constraint tree from the textual
// predicate wire format.
func ParseConstraint(input string) (Constraint, error) {
	return constraint.Parse(input)
}
