package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/opst/taskboard/pkg/ai"
	binderr "github.com/opst/taskboard/pkg/api-types-binding/errors"
	apiai "github.com/opst/taskboard/pkg/api/types/ai"
)

// MaxUploadSize is the limit of media uploaded for AI extraction.
const MaxUploadSize = 20 << 20

// uploaded reads the multipart file in the field "file".
func uploaded(c echo.Context) ([]byte, string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, "", binderr.BadRequest("no file uploaded", err)
	}
	if MaxUploadSize < fh.Size {
		return nil, "", binderr.NewErrorMessage(
			http.StatusRequestEntityTooLarge, "file is too large",
			binderr.WithAdvice("upload a file up to 20MiB"),
		)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", binderr.InternalServerError(err)
	}
	defer f.Close()

	media, err := io.ReadAll(io.LimitReader(f, MaxUploadSize))
	if err != nil {
		return nil, "", binderr.InternalServerError(err)
	}
	mimeType := fh.Header.Get(echo.HeaderContentType)
	if mimeType == "" {
		mimeType = http.DetectContentType(media)
	}
	return media, mimeType, nil
}

func extractionError(err error) error {
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		return binderr.NewErrorMessage(
			http.StatusInternalServerError, "Gemini API Key not configured",
			binderr.WithAdvice("set gemini.apiKey in the server config"),
			binderr.WithError(err),
		)
	case errors.Is(err, ai.ErrInvalidOutput):
		return binderr.NewErrorMessage(
			http.StatusInternalServerError, "Failed to process media",
			binderr.WithAdvice("try again with a clearer image or audio"),
			binderr.WithError(err),
		)
	}
	return asHTTPError(err)
}

// GenerateTaskHandler drafts a task from an uploaded image or audio.
func GenerateTaskHandler(extractor *ai.Extractor) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := principalOf(c); err != nil {
			return err
		}
		media, mimeType, err := uploaded(c)
		if err != nil {
			return err
		}

		draft, err := extractor.Task(c.Request().Context(), media, mimeType)
		if err != nil {
			return extractionError(err)
		}
		return c.JSON(http.StatusOK, apiai.TaskDraft{
			Title:         draft.Title,
			Description:   draft.Description,
			EstimatedTime: draft.EstimatedTime,
			DueDate:       draft.DueDate,
		})
	}
}

// GenerateRemindersHandler extracts reminders from an uploaded audio.
func GenerateRemindersHandler(extractor *ai.Extractor) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := principalOf(c); err != nil {
			return err
		}
		media, mimeType, err := uploaded(c)
		if err != nil {
			return err
		}

		reminders, err := extractor.Reminders(c.Request().Context(), media, mimeType)
		if err != nil {
			return extractionError(err)
		}
		return c.JSON(http.StatusOK, apiai.Reminders{Reminders: reminders})
	}
}
