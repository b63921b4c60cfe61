package handler

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/library-availability/internal/domain"
	"github.com/library-availability/internal/pkg/errors"
	"github.com/library-availability/internal/pkg/utils"
	appValidator "github.com/library-availability/internal/pkg/validator"
	"github.com/library-availability/internal/usecase"
	"github.com/library-availability/internal/usecase/dto"
)

// BookFinder - поиск книги в ближайших библиотеках
type BookFinder interface {
	FindBookAtLibraries(ctx context.Context, isbn string, center domain.Coordinate, radiusKm float64) ([]domain.BranchAvailability, error)
}

// LibraryHandler - обработчик запросов о библиотеках и наличии книг
type LibraryHandler struct {
	finder  BookFinder
	locator usecase.BranchFinder
	systems []domain.CatalogSystem
	logger  *zap.Logger
}

// NewLibraryHandler - создание нового LibraryHandler
func NewLibraryHandler(
	finder BookFinder,
	locator usecase.BranchFinder,
	systems []domain.CatalogSystem,
	logger *zap.Logger,
) *LibraryHandler {
	return &LibraryHandler{
		finder:  finder,
		locator: locator,
		systems: systems,
		logger:  logger,
	}
}

// FindBook - поиск книги в библиотеках рядом с точкой
// @Summary Наличие книги в ближайших библиотеках
// @Description Находит библиотеки в радиусе max_distance от точки и проверяет наличие книги по ISBN в их каталожных системах. Сначала идут филиалы, где книга есть на полке, затем по расстоянию.
// @Tags Libraries
// @Produce json
// @Param isbn query string true "ISBN (дефисы и пробелы допускаются)"
// @Param lat query number true "Широта"
// @Param lng query number true "Долгота"
// @Param max_distance query number false "Радиус поиска, км" default(15)
// @Success 200 {object} utils.SuccessResponse{data=dto.LibraryAvailabilityResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/libraries/availability [get]
func (h *LibraryHandler) FindBook(c *fiber.Ctx) error {
	start := time.Now()

	isbn, libraries, err := h.findBook(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.LibraryAvailabilityResponse{
		ISBN:      isbn,
		Libraries: libraries,
	}, &utils.Meta{
		Total:    len(libraries),
		TimeMSec: float64(time.Since(start).Microseconds()) / 1000,
	})
}

// FindBookLegacy - тот же поиск для мобильного клиента: ответ без конверта, массив строк
// @Summary Наличие книги (мобильный клиент)
// @Description Совместимый маршрут мобильного клиента, возвращает массив строк без конверта data/meta.
// @Tags Libraries
// @Produce json
// @Param isbn query string true "ISBN"
// @Param lat query number true "Широта"
// @Param lng query number true "Долгота"
// @Param max_distance query number false "Радиус поиска, км" default(15)
// @Success 200 {array} domain.BranchAvailability
// @Failure 400 {object} utils.ErrorResponse
// @Router /get-book/find [get]
func (h *LibraryHandler) FindBookLegacy(c *fiber.Ctx) error {
	_, libraries, err := h.findBook(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	return c.JSON(libraries)
}

func (h *LibraryHandler) findBook(c *fiber.Ctx) (string, []domain.BranchAvailability, error) {
	var req dto.LibraryAvailabilityRequest
	if err := c.QueryParser(&req); err != nil {
		return "", nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{"reason": err.Error()})
	}

	req.ISBN = domain.NormalizeISBN(req.ISBN)
	if err := appValidator.Validate(&req); err != nil {
		return "", nil, validationError(err)
	}

	center := domain.Coordinate{Lat: *req.Lat, Lon: *req.Lng}
	libraries, err := h.finder.FindBookAtLibraries(c.UserContext(), req.ISBN, center, radiusOrDefault(req.MaxDistance))
	if err != nil {
		h.logger.Error("Failed to find book at libraries",
			zap.String("isbn", req.ISBN),
			zap.Error(err))
		return "", nil, err
	}

	return req.ISBN, libraries, nil
}

// Nearby - библиотеки рядом с точкой без проверки наличия
// @Summary Ближайшие библиотеки
// @Description Возвращает филиалы библиотек в радиусе max_distance с определённой каталожной системой (или null).
// @Tags Libraries
// @Produce json
// @Param lat query number true "Широта"
// @Param lng query number true "Долгота"
// @Param max_distance query number false "Радиус поиска, км" default(15)
// @Success 200 {object} utils.SuccessResponse{data=dto.NearbyLibrariesResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/libraries/nearby [get]
func (h *LibraryHandler) Nearby(c *fiber.Ctx) error {
	var req dto.NearbyLibrariesRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{"reason": err.Error()}))
	}

	if err := appValidator.Validate(&req); err != nil {
		return utils.SendError(c, validationError(err))
	}

	center := domain.Coordinate{Lat: *req.Lat, Lon: *req.Lng}
	branches, err := h.locator.FindNear(c.UserContext(), center, radiusOrDefault(req.MaxDistance))
	if err != nil {
		h.logger.Error("Failed to find nearby libraries", zap.Error(err))
		return utils.SendError(c, err)
	}

	libraries := make([]dto.LibraryDTO, len(branches))
	for i := range branches {
		libraries[i] = dto.NewLibraryDTO(&branches[i])
	}

	return utils.SendSuccess(c, dto.NearbyLibrariesResponse{Libraries: libraries}, &utils.Meta{
		Total: len(libraries),
	})
}

// Systems - список поддерживаемых каталожных систем
// @Summary Каталожные системы
// @Description Каталожные системы, в которых сервис умеет проверять наличие книг
// @Tags Libraries
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.CatalogSystemsResponse}
// @Router /api/v1/libraries/systems [get]
func (h *LibraryHandler) Systems(c *fiber.Ctx) error {
	return utils.SendSuccess(c, dto.CatalogSystemsResponse{Systems: h.systems}, &utils.Meta{
		Total: len(h.systems),
	})
}

func radiusOrDefault(km float64) float64 {
	if km <= 0 {
		return usecase.DefaultMaxDistanceKm
	}
	return km
}

// validationError переводит ошибку валидатора в AppError по первому невалидному полю
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return errors.ErrInvalidRequest.WithDetails(map[string]interface{}{"reason": err.Error()})
	}

	fe := verrs[0]
	switch fe.Field() {
	case "ISBN":
		return errors.ErrInvalidISBN
	case "Lat", "Lng":
		return errors.ErrInvalidCoordinates.WithDetails(map[string]interface{}{
			"field": fe.Field(),
			"rule":  fe.Tag(),
		})
	case "MaxDistance":
		return errors.ErrInvalidRadius.WithDetails(map[string]interface{}{
			"min_km": 0.1,
			"max_km": 100,
		})
	default:
		return errors.ErrInvalidRequest.WithDetails(map[string]interface{}{"reason": fe.Error()})
	}
}
