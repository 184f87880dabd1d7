package handlers

import (
	"os"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-studio/internal/middleware"
	"alfredoptarigan/resume-studio/internal/models"
	"alfredoptarigan/resume-studio/internal/services"
	"alfredoptarigan/resume-studio/internal/views"
)

type EnhanceHandler struct {
	widget       services.EnhanceWidget
	silentErrors bool
}

func NewEnhanceHandler(widget services.EnhanceWidget, silentErrors bool) *EnhanceHandler {
	return &EnhanceHandler{
		widget:       widget,
		silentErrors: silentErrors,
	}
}

func (h *EnhanceHandler) HandlePage(c *fiber.Ctx) error {
	view, err := h.widget.View(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}

	return c.Render("enhance", enhancePageData(view, h.silentErrors), views.Layout)
}

func (h *EnhanceHandler) HandleUpload(c *fiber.Ctx) error {
	sessionID := middleware.SessionID(c)

	fileHeader, err := c.FormFile(services.ResumeField)
	if err != nil {
		if wantsJSON(c) {
			return h.HandleState(c)
		}
		return c.Redirect("/enhance", fiber.StatusSeeOther)
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
	return c.Redirect("/enhance", fiber.StatusSeeOther)
}

func (h *EnhanceHandler) HandleReset(c *fiber.Ctx) error {
	if err := h.widget.Reset(c.UserContext(), middleware.SessionID(c)); err != nil {
		return err
	}

	if wantsJSON(c) {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Redirect("/enhance", fiber.StatusSeeOther)
}

func (h *EnhanceHandler) HandleState(c *fiber.Ctx) error {
	view, err := h.widget.View(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// HandleDownload serves an enhanced document owned by the caller's session.
func (h *EnhanceHandler) HandleDownload(c *fiber.Ctx) error {
	download, err := h.widget.Download(c.UserContext(), middleware.SessionID(c), c.Params("id"))
	if err != nil {
		if services.IsDownloadNotFound(err) {
			return fiber.NewError(fiber.StatusNotFound, "Download not found")
		}
		return err
	}

	data, err := os.ReadFile(download.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fiber.NewError(fiber.StatusNotFound, "Download not found")
		}
		return err
	}

	c.Attachment(download.Filename)
	c.Set(fiber.HeaderContentType, models.PDFContentType)
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(data)
}
