package order

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/mandi/pkg/middleware"
)

// Handler は注文APIのHTTPハンドラ。
type Handler struct {
	// manager は注文のアプリケーションサービス。
	manager *Manager
}

// NewHandler は新しい注文ハンドラを生成する。
func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// Register は認証必須の注文APIルートを登録する。
func (h *Handler) Register(api *gin.RouterGroup) {
	api.POST("/orders", h.create)
	api.GET("/orders", h.list)
	api.GET("/orders/:id", h.get)
	api.PUT("/orders/:id/status", h.updateStatus)
}

// itemRequest は注文商品1件のJSONリクエスト構造。
type itemRequest struct {
	// ProductID は商品の一意識別子。
	ProductID string `json:"product_id" binding:"required"`
	// Name は商品名。
	Name string `json:"name" binding:"required"`
	// Price は注文時点の単価。
	Price float64 `json:"price"`
	// Quantity は注文数量。
	Quantity int64 `json:"quantity" binding:"required"`
}

// createOrderRequest は注文作成リクエストのJSON構造。
type createOrderRequest struct {
	// FarmerID は注文先の農家のユーザーID。
	FarmerID string `json:"farmer_id" binding:"required"`
	// Products は注文する商品の一覧。
	Products []itemRequest `json:"products" binding:"required"`
	// TotalPrice は注文の合計金額。
	TotalPrice float64 `json:"total_price" binding:"required"`
	// DeliveryMode は受け取り方法（pickup または delivery）。
	DeliveryMode string `json:"delivery_mode"`
	// DeliveryAddress は配達先住所。
	DeliveryAddress string `json:"delivery_address"`
}

// updateStatusRequest はステータス更新リクエストのJSON構造。
type updateStatusRequest struct {
	// Status は遷移先のステータス。
	Status string `json:"status" binding:"required"`
}

// itemResponse は注文商品1件のJSONレスポンス構造。
type itemResponse struct {
	// ProductID は商品の一意識別子。
	ProductID string `json:"product_id"`
	// Name は注文時点の商品名。
	Name string `json:"name"`
	// Price は注文時点の単価。
	Price float64 `json:"price"`
	// Quantity は注文数量。
	Quantity int64 `json:"quantity"`
}

// orderResponse は注文のJSONレスポンス構造。
type orderResponse struct {
	// ID は注文の一意識別子。
	ID string `json:"id"`
	// ConsumerID は注文した消費者のユーザーID。
	ConsumerID string `json:"consumer_id"`
	// FarmerID は注文先の農家のユーザーID。
	FarmerID string `json:"farmer_id"`
	// Products は注文に含まれる商品の一覧。
	Products []itemResponse `json:"products"`
	// TotalPrice は注文の合計金額。
	TotalPrice float64 `json:"total_price"`
	// DeliveryMode は受け取り方法。
	DeliveryMode string `json:"delivery_mode"`
	// DeliveryAddress は配達先住所。
	DeliveryAddress string `json:"delivery_address,omitempty"`
	// Status は注文の現在のステータス。
	Status string `json:"status"`
	// CreatedAt は注文の作成日時（RFC3339形式）。
	CreatedAt string `json:"created_at"`
	// UpdatedAt は注文の最終更新日時（RFC3339形式）。
	UpdatedAt string `json:"updated_at"`
}

// toOrderResponse はOrderをJSONレスポンスに変換する。
func toOrderResponse(o Order) orderResponse {
	products := make([]itemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		products = append(products, itemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}
	return orderResponse{
		ID:              o.ID,
		ConsumerID:      o.ConsumerID,
		FarmerID:        o.FarmerID,
		Products:        products,
		TotalPrice:      o.TotalPrice,
		DeliveryMode:    o.DeliveryMode,
		DeliveryAddress: o.DeliveryAddress,
		Status:          string(o.Status),
		CreatedAt:       o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       o.UpdatedAt.Format(time.RFC3339),
	}
}

// create は注文を作成するハンドラ。
func (h *Handler) create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "ユーザーIDが取得できません"})
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "リクエスト形式が不正です"})
		return
	}

	items := make([]Item, 0, len(req.Products))
	for _, p := range req.Products {
		items = append(items, Item{
			ProductID: p.ProductID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  p.Quantity,
		})
	}

	order, err := h.manager.Create(c.Request.Context(), userID, CreateInput{
		FarmerID:        req.FarmerID,
		Items:           items,
		TotalPrice:      req.TotalPrice,
		DeliveryMode:    req.DeliveryMode,
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		if errors.Is(err, ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "注文のパラメータが不正です"})
			return
		}
		log.Printf("注文の作成に失敗: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "注文の作成に失敗しました"})
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

// list は認証済みユーザーが当事者である注文の一覧を返すハンドラ。
func (h *Handler) list(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "ユーザーIDが取得できません"})
		return
	}

	orders, err := h.manager.ListForUser(c.Request.Context(), userID)
	if err != nil {
		log.Printf("注文一覧の取得に失敗: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "注文一覧の取得に失敗しました"})
		return
	}

	responses := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, toOrderResponse(order))
	}
	c.JSON(http.StatusOK, responses)
}

// get は注文1件を返すハンドラ。参照できるのは注文の当事者のみ。
func (h *Handler) get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "ユーザーIDが取得できません"})
		return
	}

	order, err := h.manager.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "注文が見つかりません"})
		case errors.Is(err, ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"message": "この注文を参照する権限がありません"})
		default:
			log.Printf("注文の取得に失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "注文の取得に失敗しました"})
		}
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

// updateStatus は注文のステータスを遷移させるハンドラ。
// 遷移が拒否された場合（409）は注文の現在の状態をレスポンスに含める。
func (h *Handler) updateStatus(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "ユーザーIDが取得できません"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "リクエスト形式が不正です"})
		return
	}

	order, err := h.manager.Transition(c.Request.Context(), c.Param("id"), userID, Status(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"message": "不明なステータスです"})
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "注文が見つかりません"})
		case errors.Is(err, ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"message": "この注文を操作する権限がありません"})
		case errors.Is(err, ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{
				"message": "許可されていないステータス遷移です",
				"order":   toOrderResponse(order),
			})
		case errors.Is(err, ErrConflict):
			c.JSON(http.StatusConflict, gin.H{
				"message": "注文が同時に更新されました",
				"order":   toOrderResponse(order),
			})
		default:
			log.Printf("注文ステータスの更新に失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "注文ステータスの更新に失敗しました"})
		}
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}
