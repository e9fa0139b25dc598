package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/Victor-armando18/marketplace-rules/internal/config"
	"github.com/Victor-armando18/marketplace-rules/internal/domain"
	"github.com/Victor-armando18/marketplace-rules/internal/domain/discount"
	"github.com/Victor-armando18/marketplace-rules/internal/domain/policy"
	"github.com/Victor-armando18/marketplace-rules/internal/infrastructure"
	"github.com/Victor-armando18/marketplace-rules/internal/infrastructure/metrics"
	"github.com/Victor-armando18/marketplace-rules/internal/interfaces"
	"github.com/Victor-armando18/marketplace-rules/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	var catalog interfaces.CatalogView = infrastructure.AllowAllCatalog{}
	var static *infrastructure.StaticCatalog
	if cfg.CatalogPath != "" {
		static, err = infrastructure.LoadStaticCatalog(cfg.CatalogPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load catalog dump")
		}
		catalog = static
	}

	engine := usecase.NewEngineService(catalog, metrics.NewRecorder(), log)

	loader := infrastructure.NewFilePackLoader(cfg.PackDir)
	if pack, err := loader.Load(context.Background(), cfg.PackVersion); err != nil {
		log.Warn().Err(err).Str("version", cfg.PackVersion).Msg("no rule pack installed at boot")
	} else if err := engine.InstallPack(context.Background(), pack); err != nil {
		log.Fatal().Err(err).Msg("failed to install rule pack")
	}

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions, http.MethodGet},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAccept},
	}))
	e.Use(correlationID)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	if static != nil {
		e.GET("/products", func(c echo.Context) error {
			return c.JSON(http.StatusOK, static.Entries())
		})
	}

	e.POST("/baskets/check", handleCheck(engine))
	e.POST("/baskets/savings", handleSavings(engine))
	e.POST("/baskets/checkout", handleCheckout(engine))

	e.POST("/policies", handleAddPolicy(engine))
	e.POST("/policies/compose", handleComposePolicies(engine))
	e.PUT("/policies/:id/predicate", handleSetPredicate(engine.SetPolicyPredicate))
	e.DELETE("/policies/:id", handleRemove(engine.RemovePolicy))

	e.POST("/discounts", handleAddDiscount(engine))
	e.POST("/discounts/compose", handleComposeDiscounts(engine))
	e.PATCH("/discounts/:id", handlePatchDiscount(engine))
	e.PUT("/discounts/:id/predicate", handleSetPredicate(engine.SetDiscountPredicate))
	e.DELETE("/discounts/:id", handleRemove(engine.RemoveDiscount))

	log.Info().Str("addr", cfg.ListenAddr).Msg("engine listening")
	if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func correlationID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("X-Correlation-Id", uuid.NewString())
		return next(c)
	}
}

func handleCheck(engine *usecase.EngineService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var snap domain.BasketSnapshot
		if err := c.Bind(&snap); err != nil {
			return c.JSON(http.StatusBadRequest, errBody("invalid snapshot payload"))
		}
		allowed, failed := engine.EvaluatePolicies(c.Request().Context(), &snap)
		return c.JSON(http.StatusOK, map[string]any{"allowed": allowed, "failedPolicies": failed})
	}
}

func handleSavings(engine *usecase.EngineService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var snap domain.BasketSnapshot
		if err := c.Bind(&snap); err != nil {
			return c.JSON(http.StatusBadRequest, errBody("invalid snapshot payload"))
		}
		savings, amounts := engine.EvaluateDiscounts(c.Request().Context(), &snap)
		return c.JSON(http.StatusOK, map[string]any{"savings": savings, "amounts": amounts})
	}
}

func handleCheckout(engine *usecase.EngineService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var snap domain.BasketSnapshot
		if err := c.Bind(&snap); err != nil {
			return c.JSON(http.StatusBadRequest, errBody("invalid snapshot payload"))
		}
		summary, err := engine.Checkout(c.Request().Context(), &snap)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, errBody(err.Error()))
		}
		if !summary.Allowed {
			return c.JSON(http.StatusForbidden, summary)
		}
		return c.JSON(http.StatusOK, summary)
	}
}

type policyRequest struct {
	StoreID int64       `json:"storeId"`
	Spec    policy.Spec `json:"spec"`
}

func handleAddPolicy(engine *usecase.EngineService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req policyRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errBody("invalid policy payload"))
		}
		id, err := engine.AddPolicy(req.StoreID, req.Spec)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity, errBody(err.Error()))
		}
		return c.JSON(http.StatusCreated, map[string]uint64{"id": id})
	}
}

type discountRequest struct {
	StoreID int64         `json:"storeId"`
	Spec    discount.Spec `json:"spec"`
}

func handleAddDiscount(engine *usecase.EngineService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req discountRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errBody("invalid discount payload"))
		}
		id, err := engine.AddDiscount(req.StoreID, req.Spec)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity, errBody(err.Error()))
		}
		return c.JSON(http.StatusCreated, map[string]uint64{"id": id})
	}
}

type composeRequest struct {
	Op    string   `json:"op"`
	Left  uint64   `json:"left"`
	Right uint64   `json:"right"`
	IDs   []uint64 `json:"ids"`
}

func handleComposePolicies(engine *usecase.EngineService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req composeRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errBody("invalid compose payload"))
		}
		id, err := engine.ComposePolicies(req.Op, req.Left, req.Right)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity, errBody(err.Error()))
		}
		return c.JSON(http.StatusCreated, map[string]uint64{"id": id})
	}
}

func handleComposeDiscounts(engine *usecase.EngineService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req composeRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errBody("invalid compose payload"))
		}
		ids := req.IDs
		if len(ids) == 0 {
			ids = []uint64{req.Left, req.Right}
		}
		id, err := engine.ComposeDiscounts(req.Op, ids...)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity, errBody(err.Error()))
		}
		return c.JSON(http.StatusCreated, map[string]uint64{"id": id})
	}
}

type patchRequest struct {
	StoreID  int64            `json:"storeId"`
	Original discount.Spec    `json:"original"`
	Patch    []map[string]any `json:"patch"`
}

// handlePatchDiscount amends a leaf discount in place: the RFC 6902 patch is
// applied to the declarative spec and the rebuilt node registered under a
// fresh id before the old one is retired, so a rejected patch never loses
// the original.
func handlePatchDiscount(engine *usecase.EngineService) echo.HandlerFunc {
	return func(c echo.Context) error {
		oldID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errBody("invalid discount id"))
		}
		var req patchRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errBody("invalid patch request"))
		}

		patchBytes, _ := json.Marshal(req.Patch)
		updated, err := infrastructure.ApplyDiscountPatch(req.Original, patchBytes)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity, errBody(err.Error()))
		}

		id, err := engine.AddDiscount(req.StoreID, updated)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity, errBody(err.Error()))
		}
		if !engine.RemoveDiscount(oldID) {
			engine.RemoveDiscount(id)
			return c.JSON(http.StatusNotFound, errBody("discount not found"))
		}
		return c.JSON(http.StatusOK, map[string]any{"id": id, "spec": updated})
	}
}

type predicateRequest struct {
	Predicate string `json:"predicate"`
}

func handleSetPredicate(set func(id uint64, predicateText string) (bool, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errBody("invalid id"))
		}
		var req predicateRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errBody("invalid predicate payload"))
		}
		applied, err := set(id, req.Predicate)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity, errBody(err.Error()))
		}
		return c.JSON(http.StatusOK, map[string]bool{"applied": applied})
	}
}

func handleRemove(remove func(id uint64) bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errBody("invalid id"))
		}
		if !remove(id) {
			return c.JSON(http.StatusNotFound, errBody("not found"))
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func errBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
