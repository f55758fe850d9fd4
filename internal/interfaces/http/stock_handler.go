package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/stock"
)

const maxHistoryLimit = 500

// productIDParam copia el id de la ruta: fiber reutiliza el buffer de la petición y el id
// puede quedar como clave del bloqueo del producto.
func productIDParam(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("id"))
}

// StockHandler maneja las peticiones HTTP del ledger de stock (protegido).
type StockHandler struct {
	create        *inventory.CreateStockUseCase
	adjust        *inventory.AdjustStockUseCase
	query         *inventory.StockQueryUseCase
	replenishment *inventory.ReplenishmentUseCase
	dashboard     *analytics.DashboardUseCase
	val           *Validator
	historyLimit  int
}

// StockHandlerDeps casos de uso que atiende el handler.
type StockHandlerDeps struct {
	Create        *inventory.CreateStockUseCase
	Adjust        *inventory.AdjustStockUseCase
	Query         *inventory.StockQueryUseCase
	Replenishment *inventory.ReplenishmentUseCase
	Dashboard     *analytics.DashboardUseCase
	Validator     *Validator
	HistoryLimit  int // tamaño por defecto de GET /history
}

// NewStockHandler construye el handler.
func NewStockHandler(deps StockHandlerDeps) *StockHandler {
	if deps.Validator == nil {
		deps.Validator = NewValidator()
	}
	if deps.HistoryLimit <= 0 {
		deps.HistoryLimit = 50
	}
	return &StockHandler{
		create:        deps.Create,
		adjust:        deps.Adjust,
		query:         deps.Query,
		replenishment: deps.Replenishment,
		dashboard:     deps.Dashboard,
		val:           deps.Validator,
		historyLimit:  deps.HistoryLimit,
	}
}

// Create godoc
// @Summary      Crear registro de stock
// @Description  Reparte el stock inicial entre bodegas (single o multiple). SKU vacío se genera desde la categoría.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockRequest  true  "Producto y distribución inicial"
// @Success      201   {object}  dto.StockRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock [post]
func (h *StockHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateStockRequest
	if ok, err := h.val.bind(c, &in); !ok {
		return err
	}
	rec, err := h.create.Create(c.Context(), toCreateStockInput(in, GetActor(c)))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toStockRecordResponse(rec))
}

// List godoc
// @Summary      Consultar stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        q             query  string  false  "Texto en nombre o SKU"
// @Param        status        query  string  false  "IN_STOCK, LOW_STOCK, CRITICAL, OUT_OF_STOCK"
// @Param        warehouse_id  query  string  false  "Solo productos con unidades en la bodega"
// @Param        sort          query  string  false  "name, sku, on_hand, available, last_updated"
// @Param        desc          query  bool    false  "Orden descendente"
// @Success      200  {object}  dto.StockListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	filter := stock.Filter{
		Search:      strings.TrimSpace(c.Query("q")),
		Status:      stock.Status(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
		WarehouseID: strings.TrimSpace(c.Query("warehouse_id")),
		SortBy:      strings.ToLower(strings.TrimSpace(c.Query("sort"))),
		Desc:        c.QueryBool("desc", false),
	}
	records, err := h.query.QueryStock(c.Context(), filter)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.StockListResponse{Items: make([]dto.StockRecordResponse, 0, len(records)), Total: len(records)}
	for _, r := range records {
		out.Items = append(out.Items, toStockRecordResponse(r))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener registro de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{id} [get]
func (h *StockHandler) GetByID(c *fiber.Ctx) error {
	rec, err := h.query.GetRecord(c.Context(), productIDParam(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toStockRecordResponse(rec))
}

// Status godoc
// @Summary      Estado de stock del producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockStatusResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{id}/status [get]
func (h *StockHandler) Status(c *fiber.Ctx) error {
	view, err := h.query.GetStockStatus(c.Context(), productIDParam(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StockStatusResponse{
		ProductID: view.ProductID,
		Status:    string(view.Status),
		Available: view.Available,
		Threshold: view.Threshold,
	})
}

// Adjust godoc
// @Summary      Registrar ajuste de stock
// @Description  ADD, REMOVE o TRANSFER. REMOVE se limita a lo que hay en la bodega; TRANSFER exige stock suficiente en origen.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del producto"
// @Param        body  body  dto.AdjustStockRequest  true  "Ajuste"
// @Success      201   {object}  dto.AdjustStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/{id}/adjustments [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if ok, err := h.val.bind(c, &in); !ok {
		return err
	}
	res, err := h.adjust.AdjustStock(c.Context(), toAdjustStockInput(productIDParam(c), in, GetActor(c)))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toAdjustStockResponse(res))
}

// SetOnHand godoc
// @Summary      Corregir on-hand
// @Description  Fija el on-hand y registra un ajuste CORRECTION con la diferencia.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del producto"
// @Param        body  body  dto.SetOnHandRequest  true  "Nuevo on-hand"
// @Success      200   {object}  dto.AdjustStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/{id}/on-hand [put]
func (h *StockHandler) SetOnHand(c *fiber.Ctx) error {
	var in dto.SetOnHandRequest
	if ok, err := h.val.bind(c, &in); !ok {
		return err
	}
	res, err := h.adjust.SetStockDirect(c.Context(), inventory.SetStockDirectInput{
		ProductID:   productIDParam(c),
		NewOnHand:   *in.OnHand,
		WarehouseID: in.WarehouseID,
		Reason:      entity.AdjustmentReason(strings.ToUpper(in.Reason)),
		Note:        in.Note,
		Actor:       GetActor(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toAdjustStockResponse(res))
}

// UpdatePlanning godoc
// @Summary      Actualizar umbral y unidades entrantes
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del producto"
// @Param        body  body  dto.UpdatePlanningRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.StockRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/{id}/planning [put]
func (h *StockHandler) UpdatePlanning(c *fiber.Ctx) error {
	var in dto.UpdatePlanningRequest
	if ok, err := h.val.bind(c, &in); !ok {
		return err
	}
	rec, err := h.adjust.UpdatePlanning(c.Context(), productIDParam(c), inventory.PlanningInput{
		Threshold: in.Threshold,
		Incoming:  in.Incoming,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toStockRecordResponse(rec))
}

// History godoc
// @Summary      Historial de ajustes
// @Description  Entradas más recientes primero.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "ID del producto"
// @Param        limit  query  int     false  "Máximo de entradas"  default(50)
// @Success      200    {object}  dto.HistoryResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /api/stock/{id}/history [get]
func (h *StockHandler) History(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", h.historyLimit)
	if limit <= 0 {
		return badRequest(c, "VALIDATION", "limit debe ser positivo")
	}
	limit = min(limit, maxHistoryLimit)
	productID := productIDParam(c)
	items, err := h.query.GetHistory(c.Context(), productID, limit)
	if err != nil {
		return writeError(c, err)
	}
	total, err := h.query.CountHistory(c.Context(), productID)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.HistoryResponse{
		ProductID: productID,
		Items:     make([]dto.AdjustmentResponse, 0, len(items)),
		Page:      dto.PageResponse{Limit: limit, Total: total},
	}
	for _, a := range items {
		out.Items = append(out.Items, toAdjustmentResponse(a))
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Resumen del inventario
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StockSummaryDTO
// @Router       /api/stock/stats [get]
func (h *StockHandler) Stats(c *fiber.Ctx) error {
	summary, err := h.dashboard.GetSummary(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}

// Replenishment godoc
// @Summary      Lista de reposición
// @Description  Productos por debajo de su estado normal con la cantidad sugerida a pedir.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Filtrar por bodega"
// @Success      200  {array}  dto.ReplenishmentSuggestionDTO
// @Router       /api/stock/replenishment [get]
func (h *StockHandler) Replenishment(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.Context(), strings.TrimSpace(c.Query("warehouse_id")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}
