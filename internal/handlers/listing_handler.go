package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/heritage-nest/server/internal/models"
	"github.com/heritage-nest/server/internal/services"
)

type ListingHandler struct {
	listings *services.ListingService
}

func NewListingHandler(listings *services.ListingService) *ListingHandler {
	return &ListingHandler{listings: listings}
}

func (h *ListingHandler) ListAll(c *fiber.Ctx) error {
	properties, err := h.listings.ListAll(c.Context())
	if err != nil {
		return err
	}
	if properties == nil {
		properties = []models.Property{}
	}
	return c.JSON(properties)
}

func (h *ListingHandler) Search(c *fiber.Ctx) error {
	params := services.SearchParams{
		Budget:       c.Query("budget"),
		PropertyType: c.Query("propertyType"),
		Location:     c.Query("location"),
		SearchText:   c.Query("searchText"),
	}

	properties, err := h.listings.Search(c.Context(), params)
	if err != nil {
		return err
	}
	if properties == nil {
		properties = []models.Property{}
	}
	return c.JSON(properties)
}

func (h *ListingHandler) GetByID(c *fiber.Ctx) error {
	property, err := h.listings.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(property)
}

func (h *ListingHandler) Create(c *fiber.Ctx) error {
	var fields map[string]any
	if err := c.BodyParser(&fields); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	id, err := h.listings.Create(c.Context(), fields)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":     true,
		"message":     "Property created successfully",
		"inserted_id": id,
	})
}

func (h *ListingHandler) Update(c *fiber.Ctx) error {
	var fields map[string]any
	if err := c.BodyParser(&fields); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.listings.Update(c.Context(), c.Params("id"), fields)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Property updated successfully",
		"result":  result,
	})
}

func (h *ListingHandler) Delete(c *fiber.Ctx) error {
	if err := h.listings.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Property deleted successfully"})
}

func (h *ListingHandler) PlaceBid(c *fiber.Ctx) error {
	var request struct {
		BidAmount float64 `json:"bid_amount"`
		BidderID  string  `json:"bidder_id"`
		Name      string  `json:"name"`
		Email     string  `json:"email"`
		Phone     string  `json:"phone"`
	}

	if err := c.BodyParser(&request); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	property, err := h.listings.PlaceBid(c.Context(), c.Params("id"), services.BidRequest{
		Amount:   request.BidAmount,
		BidderID: request.BidderID,
		Name:     request.Name,
		Email:    request.Email,
		Phone:    request.Phone,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message":  "Bid placed successfully",
		"property": property,
	})
}

func (h *ListingHandler) UploadPhoto(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing photo file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "failed to open photo file")
	}
	defer file.Close()

	object, err := h.listings.UploadPhoto(c.Context(), c.Params("id"),
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file, fileHeader.Size)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Photo uploaded successfully",
		"photo":   object,
	})
}

func (h *ListingHandler) PhotoURL(c *fiber.Ctx) error {
	id := c.Params("id")
	object := id + "/" + c.Params("object")

	url, err := h.listings.PhotoURL(c.Context(), id, object)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"url":        url,
		"expires_in": services.PhotoURLExpiry.String(),
	})
}
