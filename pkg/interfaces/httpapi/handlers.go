package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vsinha/bomkit/pkg/application/app"
	"github.com/vsinha/bomkit/pkg/application/services/bom"
	"github.com/vsinha/bomkit/pkg/application/services/importer"
	"github.com/vsinha/bomkit/pkg/application/services/parts"
	"github.com/vsinha/bomkit/pkg/application/services/quotes"
	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/vsinha/bomkit/pkg/infrastructure/export"
	"github.com/vsinha/bomkit/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/bomkit/pkg/interfaces/cli/output"
)

// DateLayout is the date format accepted in quote requests.
const DateLayout = "2006-01-02"

type handler struct {
	app *app.App
}

// run executes fn under the application lock and writes its result, or the
// mapped error. The result is encoded before the lock is released since it may
// point into live state.
func (h *handler) run(c *gin.Context, status int, fn func(ctx context.Context, a *app.App) (any, error)) {
	var body []byte
	err := h.app.Do(c.Request.Context(), func(ctx context.Context) error {
		data, err := fn(ctx, h.app)
		if err != nil {
			return err
		}
		body, err = encode(data)
		return err
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(status, jsonContentType, body)
}

func (h *handler) dashboard(c *gin.Context) {
	h.run(c, http.StatusOK, func(_ context.Context, a *app.App) (any, error) {
		return a.Dashboard.Summary(), nil
	})
}

func (h *handler) activity(c *gin.Context) {
	from, _ := strconv.Atoi(c.DefaultQuery("from", "0"))
	h.run(c, http.StatusOK, func(_ context.Context, a *app.App) (any, error) {
		return a.Events().ReadAllEvents(from)
	})
}

func (h *handler) sync(c *gin.Context) {
	if err := h.app.Sync(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	h.run(c, http.StatusOK, func(_ context.Context, a *app.App) (any, error) {
		st := a.State()
		return gin.H{
			"parts": len(st.Parts), "boms": len(st.BOMs), "inventory": len(st.Inventory),
			"quotes": len(st.Quotes), "orders": len(st.Orders),
		}, nil
	})
}

func (h *handler) export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	table, err := h.app.ExportTable(c.Request.Context(), c.Param("kind"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(table.FileName(format, h.app.Now())))
	c.Header("Content-Type", format.ContentType())
	c.Status(http.StatusOK)
	if err := table.Write(c.Writer, format); err != nil {
		_ = c.Error(err)
	}
}

func (h *handler) importCSV(c *gin.Context) {
	kind, err := importer.ParseKind(c.Param("kind"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	opts := csv.DefaultOptions()
	if d := c.Query("delimiter"); d != "" {
		if opts.Delimiter, err = csv.ParseDelimiter(d); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	if e := c.Query("encoding"); e != "" {
		if opts.Encoding, err = csv.ParseEncoding(e); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	opts.HasHeader = c.DefaultQuery("header", "true") != "false"

	rows, err := csv.NewLoader(opts).Read(c.Request.Body)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	h.run(c, http.StatusOK, func(ctx context.Context, a *app.App) (any, error) {
		return a.Importer.Import(ctx, kind, rows)
	})
}

func (h *handler) listParts(c *gin.Context) {
	var category *entities.Category
	if raw := c.Query("category"); raw != "" {
		parsed, err := entities.ParseCategory(raw)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		category = &parsed
	}
	h.run(c, http.StatusOK, func(_ context.Context, a *app.App) (any, error) {
		return a.Parts.Filter(c.Query("search"), category), nil
	})
}

func (h *handler) savePart(c *gin.Context) {
	var draft parts.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		badRequest(c, err.Error())
		return
	}
	id := c.Param("id")
	h.run(c, statusFor(id), func(ctx context.Context, a *app.App) (any, error) {
		return a.Parts.SavePart(ctx, id, draft)
	})
}

func (h *handler) deletePart(c *gin.Context) {
	h.run(c, http.StatusOK, func(ctx context.Context, a *app.App) (any, error) {
		return nil, a.Parts.DeletePart(ctx, c.Param("id"))
	})
}

func (h *handler) listInventory(c *gin.Context) {
	var status *entities.StockStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := entities.ParseStockStatus(raw)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		status = &parsed
	}
	h.run(c, http.StatusOK, func(_ context.Context, a *app.App) (any, error) {
		return a.Inventory.Filter(c.Query("search"), status), nil
	})
}

type inventoryRequest struct {
	CurrentStock int `json:"currentStock"`
	MinStock     int `json:"minStock"`
	ReorderPoint int `json:"reorderPoint"`
}

func (h *handler) saveInventory(c *gin.Context) {
	var req inventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.run(c, http.StatusOK, func(ctx context.Context, a *app.App) (any, error) {
		return a.Inventory.SaveRecord(ctx, c.Param("partId"), req.CurrentStock, req.MinStock, req.ReorderPoint)
	})
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *handler) consume(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.run(c, http.StatusOK, func(ctx context.Context, a *app.App) (any, error) {
		return a.Inventory.Consume(ctx, c.Param("partId"), req.Quantity)
	})
}

func (h *handler) replenish(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.run(c, http.StatusOK, func(ctx context.Context, a *app.App) (any, error) {
		return a.Inventory.Replenish(ctx, c.Param("partId"), req.Quantity)
	})
}

func (h *handler) reconcile(c *gin.Context) {
	h.run(c, http.StatusOK, func(ctx context.Context, a *app.App) (any, error) {
		written, err := a.Inventory.ReconcileStatuses(ctx)
		return gin.H{"updated": written}, err
	})
}

func (h *handler) listBOMs(c *gin.Context) {
	h.run(c, http.StatusOK, func(_ context.Context, a *app.App) (any, error) {
		return a.BOMs.Tree(), nil
	})
}

func (h *handler) saveBOM(c *gin.Context) {
	var draft bom.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		badRequest(c, err.Error())
		return
	}
	id := c.Param("id")
	h.run(c, statusFor(id), func(ctx context.Context, a *app.App) (any, error) {
		return a.BOMs.SaveBOM(ctx, id, draft)
	})
}

func (h *handler) deleteBOM(c *gin.Context) {
	h.run(c, http.StatusOK, func(ctx context.Context, a *app.App) (any, error) {
		return nil, a.BOMs.DeleteBOM(ctx, c.Param("id"))
	})
}

func (h *handler) bomCost(c *gin.Context) {
	h.run(c, http.StatusOK, func(_ context.Context, a *app.App) (any, error) {
		cost, err := a.BOMs.CurrentCost(c.Param("id"))
		if err != nil {
			return nil, err
		}
		return gin.H{"id": c.Param("id"), "currentCost": cost}, nil
	})
}

func (h *handler) listQuotes(c *gin.Context) {
	h.run(c, http.StatusOK, func(_ context.Context, a *app.App) (any, error) {
		return a.Quotes.List(), nil
	})
}

func (h *handler) estimate(c *gin.Context) {
	quantity, err := strconv.Atoi(c.DefaultQuery("quantity", "1"))
	if err != nil {
		badRequest(c, "quantity must be an integer")
		return
	}
	h.run(c, http.StatusOK, func(_ context.Context, a *app.App) (any, error) {
		total, err := a.Quotes.EstimateCost(c.Query("bomId"), quantity)
		if err != nil {
			return nil, err
		}
		return gin.H{"bomId": c.Query("bomId"), "quantity": quantity, "totalAmount": total}, nil
	})
}

// quoteRequest carries dates as YYYY-MM-DD in the server's time zone.
type quoteRequest struct {
	CustomerName           string `json:"customerName"`
	ProductName            string `json:"productName"`
	Quantity               int    `json:"quantity"`
	ManufacturingStartDate string `json:"manufacturingStartDate"`
	DeliveryDate           string `json:"deliveryDate"`
	BOMID                  string `json:"bomId"`
	Notes                  string `json:"notes"`
}

func (r quoteRequest) draft(loc *time.Location) (quotes.Draft, error) {
	d := quotes.Draft{
		CustomerName: r.CustomerName,
		ProductName:  r.ProductName,
		Quantity:     r.Quantity,
		BOMID:        r.BOMID,
		Notes:        r.Notes,
	}
	var err error
	if r.ManufacturingStartDate != "" {
		if d.ManufacturingStartDate, err = time.ParseInLocation(DateLayout, r.ManufacturingStartDate, loc); err != nil {
			return d, err
		}
	}
	if r.DeliveryDate != "" {
		if d.DeliveryDate, err = time.ParseInLocation(DateLayout, r.DeliveryDate, loc); err != nil {
			return d, err
		}
	}
	return d, nil
}

func (h *handler) saveQuote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	draft, err := req.draft(h.app.Now().Location())
	if err != nil {
		badRequest(c, "dates must be YYYY-MM-DD")
		return
	}
	id := c.Param("id")
	h.run(c, statusFor(id), func(ctx context.Context, a *app.App) (any, error) {
		return a.Quotes.SaveQuote(ctx, id, draft)
	})
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *handler) quoteStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	status, err := entities.ParseQuoteStatus(req.Status)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	h.run(c, http.StatusOK, func(ctx context.Context, a *app.App) (any, error) {
		return a.Quotes.UpdateStatus(ctx, c.Param("id"), status)
	})
}

func (h *handler) deleteQuote(c *gin.Context) {
	h.run(c, http.StatusOK, func(ctx context.Context, a *app.App) (any, error) {
		return nil, a.Quotes.DeleteQuote(ctx, c.Param("id"))
	})
}

func (h *handler) shortages(c *gin.Context) {
	h.run(c, http.StatusOK, func(_ context.Context, a *app.App) (any, error) {
		quote, ok := a.State().Quote(c.Param("id"))
		if !ok {
			return nil, fmt.Errorf("quote %s: %w", c.Param("id"), entities.ErrNotFound)
		}
		return a.Quotes.CheckShortages(quote), nil
	})
}

func (h *handler) schedule(c *gin.Context) {
	h.run(c, http.StatusOK, func(_ context.Context, a *app.App) (any, error) {
		return a.Schedules.View(c.Param("id"))
	})
}

func (h *handler) gantt(c *gin.Context) {
	var svg string
	err := h.app.Do(c.Request.Context(), func(context.Context) error {
		view, err := h.app.Schedules.View(c.Param("id"))
		if err != nil {
			return err
		}
		svg = output.NewGanttChart(view).GenerateSVG(view, h.app.Now())
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", []byte(svg))
}

func (h *handler) productionOrder(c *gin.Context) {
	var content, name string
	err := h.app.Do(c.Request.Context(), func(context.Context) error {
		doc, err := h.app.Schedules.ProductionOrderDocument(c.Param("id"))
		if err != nil {
			return err
		}
		content, name = doc.Content, doc.FileName
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(name))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(content))
}

func (h *handler) listOrders(c *gin.Context) {
	h.run(c, http.StatusOK, func(_ context.Context, a *app.App) (any, error) {
		return a.Orders.List(), nil
	})
}

func (h *handler) plan(c *gin.Context) {
	h.run(c, http.StatusOK, func(_ context.Context, a *app.App) (any, error) {
		return a.Orders.Plan()
	})
}

func (h *handler) confirm(c *gin.Context) {
	h.run(c, http.StatusCreated, func(ctx context.Context, a *app.App) (any, error) {
		return a.Orders.CreateFromAlerts(ctx)
	})
}

func (h *handler) orderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	status, err := entities.ParseOrderStatus(req.Status)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	h.run(c, http.StatusOK, func(ctx context.Context, a *app.App) (any, error) {
		return a.Orders.UpdateStatus(ctx, c.Param("id"), status)
	})
}

func (h *handler) deleteOrder(c *gin.Context) {
	h.run(c, http.StatusOK, func(ctx context.Context, a *app.App) (any, error) {
		return nil, a.Orders.DeleteOrder(ctx, c.Param("id"))
	})
}

func statusFor(id string) int {
	if id == "" {
		return http.StatusCreated
	}
	return http.StatusOK
}
