package handler

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/Jer-romano/capstone2-traveler/internal/domain"
)

// TripHandler handles HTTP requests for trip and image operations
type TripHandler struct {
	tripService   domain.TripService
	uploadService domain.UploadService
}

// NewTripHandler creates a new trip handler
func NewTripHandler(tripService domain.TripService, uploadService domain.UploadService) *TripHandler {
	return &TripHandler{
		tripService:   tripService,
		uploadService: uploadService,
	}
}

type createTripRequest struct {
	Title  string `json:"title"`
	UserID string `json:"user_id"`
}

// CreateTrip handles POST /trips
func (h *TripHandler) CreateTrip(c *fiber.Ctx) error {
	var req createTripRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": []string{"invalid request body: " + err.Error()},
		})
	}

	// Schema validation reports every failing field at once
	var errs []string
	if req.Title == "" {
		errs = append(errs, "title is required")
	}
	if req.UserID == "" {
		errs = append(errs, "user_id is required")
	}
	if len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": errs,
		})
	}

	trip, err := h.tripService.Create(c.Context(), req.Title, req.UserID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"trip": trip,
	})
}

// ListTrips handles GET /trips
func (h *TripHandler) ListTrips(c *fiber.Ctx) error {
	trips, err := h.tripService.List(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"trips": trips,
	})
}

// GetTrip handles GET /trips/:id
func (h *TripHandler) GetTrip(c *fiber.Ctx) error {
	trip, err := h.tripService.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"trip": trip,
	})
}

// UploadImage handles POST /trips/:id — multipart form with a single "file"
// field plus caption and optional tag1..tag3. Validation order (trip, file,
// caption, payload shape) lives in the upload service; the handler only
// unpacks the form.
func (h *TripHandler) UploadImage(c *fiber.Ctx) error {
	tripID := c.Params("id")

	var upload domain.FileUpload
	if fileHeader, err := c.FormFile("file"); err == nil {
		f, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to open uploaded file")
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read uploaded file")
		}

		upload = domain.FileUpload{
			FileName:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Data:        data,
		}
	}

	caption := c.FormValue("caption")
	tags := [3]string{
		c.FormValue("tag1"),
		c.FormValue("tag2"),
		c.FormValue("tag3"),
	}

	image, err := h.uploadService.AttachImage(c.Context(), tripID, upload, caption, tags)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  fmt.Sprintf("File uploaded successfully. URL: %s", image.Location),
		"location": image.Location,
		"image":    image,
	})
}

// ListTripImages handles GET /trips/:id/images
func (h *TripHandler) ListTripImages(c *fiber.Ctx) error {
	images, err := h.tripService.GetImages(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"images": images,
	})
}

// DeleteTrip handles DELETE /trips/:id
func (h *TripHandler) DeleteTrip(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.tripService.Remove(c.Context(), id); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"deleted": id,
	})
}
