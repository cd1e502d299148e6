package notification

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/mandi/pkg/middleware"
	"github.com/nao1215/mandi/pkg/notify"
)

// Handler は通知APIのHTTPハンドラ。
type Handler struct {
	// service は通知のアプリケーションサービス。
	service *Service
}

// NewHandler は新しい通知ハンドラを生成する。
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register は認証必須の通知APIルートを登録する。
func (h *Handler) Register(api *gin.RouterGroup) {
	api.GET("/notifications", h.list)
	api.PUT("/notifications/:id/read", h.markRead)
	api.PUT("/notifications/read-all", h.markAllRead)
	api.DELETE("/notifications/:id", h.delete)
	api.DELETE("/notifications/read", h.clearRead)
}

// RegisterInternal はサービス間通信用の通知作成ルートを登録する。
func (h *Handler) RegisterInternal(internal *gin.RouterGroup) {
	internal.POST("/notifications", h.createInternal)
}

// list は最新の通知一覧と未読件数を返す。
func (h *Handler) list(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "ユーザーIDが取得できません"})
		return
	}

	notifications, unread, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		log.Printf("通知一覧の取得に失敗: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "通知一覧の取得に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// markRead は通知を既読にする。既読済みでも200を返す（冪等）。
func (h *Handler) markRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "ユーザーIDが取得できません"})
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), userID, c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "通知が見つかりません"})
			return
		}
		log.Printf("通知の既読化に失敗: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "通知の既読化に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "通知を既読にしました"})
}

// markAllRead はユーザーの未読通知をすべて既読にする。
func (h *Handler) markAllRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "ユーザーIDが取得できません"})
		return
	}

	updated, err := h.service.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		log.Printf("通知の一括既読化に失敗: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "通知の一括既読化に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// delete は通知を削除する。
func (h *Handler) delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "ユーザーIDが取得できません"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "通知が見つかりません"})
			return
		}
		log.Printf("通知の削除に失敗: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "通知の削除に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "通知を削除しました"})
}

// clearRead はユーザーの既読通知をすべて削除する。
func (h *Handler) clearRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "ユーザーIDが取得できません"})
		return
	}

	deleted, err := h.service.ClearRead(c.Request.Context(), userID)
	if err != nil {
		log.Printf("既読通知の削除に失敗: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "既読通知の削除に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// internalCreateRequest はサービス間通信での通知作成リクエスト。
type internalCreateRequest struct {
	// UserID は通知の受信者のユーザーID。
	UserID string `json:"user_id" binding:"required"`
	// Type は通知の種別。
	Type string `json:"type" binding:"required"`
	// OrderID は関連する注文のID。
	OrderID string `json:"order_id"`
	// ProductID は関連する商品のID。
	ProductID string `json:"product_id"`
	// ProductName は関連する商品名。
	ProductName string `json:"product_name"`
	// FarmerID は関連する農家のユーザーID。
	FarmerID string `json:"farmer_id"`
	// FarmerName は関連する農家の表示名。
	FarmerName string `json:"farmer_name"`
	// Quantity は在庫僅少通知の残り在庫数。
	Quantity int64 `json:"quantity"`
}

// createInternal は他サービスからの依頼で通知を作成する。
// 注文起因の通知（order_created / order_status）は注文フローからのみ
// 発行するため、このエンドポイントでは受け付けない。
func (h *Handler) createInternal(c *gin.Context) {
	var req internalCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "リクエスト形式が不正です"})
		return
	}

	var kind notify.Kind
	switch notify.Type(req.Type) {
	case notify.TypeFarmerRegistered:
		kind = notify.FarmerRegistered{FarmerID: req.FarmerID, FarmerName: req.FarmerName}
	case notify.TypeLowStock:
		kind = notify.LowStock{ProductID: req.ProductID, ProductName: req.ProductName, Quantity: req.Quantity}
	case notify.TypeProductAdded:
		kind = notify.ProductAdded{ProductID: req.ProductID, FarmerName: req.FarmerName, ProductName: req.ProductName}
	case notify.TypeOrderCompleted:
		kind = notify.OrderCompleted{OrderID: req.OrderID}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": "サポートされていない通知種別です"})
		return
	}

	payload, err := h.service.Notify(c.Request.Context(), req.UserID, kind)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "通知のパラメータが不正です"})
			return
		}
		log.Printf("通知の作成に失敗: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "通知の作成に失敗しました"})
		return
	}

	c.JSON(http.StatusCreated, payload)
}
