package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/alifbata/pkg/gemini"
	"github.com/teslashibe/alifbata/pkg/pcm"
	"github.com/teslashibe/alifbata/pkg/quran"
	"github.com/teslashibe/alifbata/pkg/retry"
	"github.com/teslashibe/alifbata/pkg/session"
)

// ActionReselectCredential tells the client to pick a different API key.
const ActionReselectCredential = "reselect_credential"

var errBadRequest = errors.New("bad request")

var badRequests = []error{
	errBadRequest,
	session.ErrEmptyCategory,
	session.ErrIndexOutOfRange,
	session.ErrOutOfOrder,
	session.ErrFinished,
	session.ErrInvalidFeedback,
	quran.ErrInvalidSurah,
	gemini.ErrEmptyInput,
	pcm.ErrUnsupportedRate,
}

// statusFor maps an error to an HTTP status.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, quran.ErrNotFound):
		return fiber.StatusNotFound
	case retry.IsPermission(err):
		return fiber.StatusUnauthorized
	case pcm.IsDecodeError(err):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, session.ErrNotFound):
		return fiber.StatusNotFound
	}
	for _, target := range badRequests {
		if errors.Is(err, target) {
			return fiber.StatusBadRequest
		}
	}
	return fiber.StatusBadGateway
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	body := fiber.Map{"error": err.Error()}
	if code == fiber.StatusUnauthorized {
		body["action"] = ActionReselectCredential
	}
	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Path(), "status", code, "error", err)
	}
	return c.Status(code).JSON(body)
}
