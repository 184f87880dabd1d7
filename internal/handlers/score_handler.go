package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-studio/internal/middleware"
	"alfredoptarigan/resume-studio/internal/services"
	"alfredoptarigan/resume-studio/internal/views"
)

type ScoreHandler struct {
	widget       services.ScoreWidget
	silentErrors bool
}

func NewScoreHandler(widget services.ScoreWidget, silentErrors bool) *ScoreHandler {
	return &ScoreHandler{
		widget:       widget,
		silentErrors: silentErrors,
	}
}

func (h *ScoreHandler) HandlePage(c *fiber.Ctx) error {
	view, err := h.widget.View(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}

	return c.Render("ats", scorePageData(view, h.silentErrors), views.Layout)
}

// HandleUpload scores the posted resume. Without a file nothing is sent and
// the page is shown unchanged.
func (h *ScoreHandler) HandleUpload(c *fiber.Ctx) error {
	sessionID := middleware.SessionID(c)

	fileHeader, err := c.FormFile(services.ResumeField)
	if err != nil {
		if wantsJSON(c) {
			return h.HandleState(c)
		}
		return c.Redirect("/ats", fiber.StatusSeeOther)
	}

	file, err := services.NewResumeFile(fileHeader)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	view, err := h.widget.Upload(c.UserContext(), sessionID, file)
	if err != nil {
		return err
	}

	if wantsJSON(c) {
		return c.JSON(view)
	}
	return c.Redirect("/ats", fiber.StatusSeeOther)
}

func (h *ScoreHandler) HandleReset(c *fiber.Ctx) error {
	if err := h.widget.Reset(c.UserContext(), middleware.SessionID(c)); err != nil {
		return err
	}

	if wantsJSON(c) {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Redirect("/ats", fiber.StatusSeeOther)
}

func (h *ScoreHandler) HandleState(c *fiber.Ctx) error {
	view, err := h.widget.View(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(view)
}
