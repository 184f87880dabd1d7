package handlers

import (
	"fmt"
	"math"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-studio/internal/models"
	"alfredoptarigan/resume-studio/internal/views"
)

const gaugeRadius = 45.0

type PageHandler struct {
	builderURL string
}

func NewPageHandler(builderURL string) *PageHandler {
	return &PageHandler{builderURL: builderURL}
}

func (h *PageHandler) HandleHome(c *fiber.Ctx) error {
	return c.Render("home", fiber.Map{
		"Title": "Home",
	}, views.Layout)
}

// HandleBuilder renders the external resume builder full screen.
func (h *PageHandler) HandleBuilder(c *fiber.Ctx) error {
	return c.Render("builder", fiber.Map{
		"Title":      "Resume Builder",
		"BuilderURL": h.builderURL,
	}, views.BareLayout)
}

type gaugeView struct {
	Score         int
	Tier          string
	Color         string
	Circumference string
	Offset        string
}

// newGauge lays out the circular score gauge: the colored arc covers
// score percent of the circle.
func newGauge(score int) *gaugeView {
	circumference := 2 * math.Pi * gaugeRadius
	offset := circumference * (1 - float64(score)/100)

	return &gaugeView{
		Score:         score,
		Tier:          string(models.TierForScore(score)),
		Color:         models.ScoreColor(score),
		Circumference: fmt.Sprintf("%.2f", circumference),
		Offset:        fmt.Sprintf("%.2f", offset),
	}
}

func scorePageData(view *models.ScoreView, silentErrors bool) fiber.Map {
	data := fiber.Map{
		"Title":      "ATS Checker",
		"Status":     string(view.Status),
		"Uploading":  view.Status == models.StatusUploading,
		"Resettable": view.Status != models.StatusIdle,
	}

	if view.Result != nil {
		data["Gauge"] = newGauge(view.Result.Score)
		data["Matched"] = view.Result.MatchedKeywords
		data["Missing"] = view.Result.MissingKeywords
	}
	if view.Error != nil && !silentErrors {
		data["Error"] = view.Error
	}

	return data
}

func enhancePageData(view *models.EnhanceView, silentErrors bool) fiber.Map {
	data := fiber.Map{
		"Title":       "Resume Enhancer",
		"Status":      string(view.Status),
		"Uploading":   view.Status == models.StatusUploading,
		"Resettable":  view.Status != models.StatusIdle,
		"Suggestions": view.Suggestions,
	}

	if view.Download != nil {
		data["Download"] = view.Download
	}
	if !silentErrors {
		if view.Error != nil {
			data["Error"] = view.Error
		}
		if view.DocumentError != nil {
			data["DocumentError"] = view.DocumentError
		}
	}

	return data
}
