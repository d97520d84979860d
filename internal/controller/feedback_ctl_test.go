package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"feedback_dev_v1_202608/internal/model"
	"feedback_dev_v1_202608/internal/repository"
	"feedback_dev_v1_202608/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 请求构造辅助 ====================

func setupFeedbackRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Shop{}, &model.FeedbackParameter{}, &model.Feedback{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}

	feedbackSvc := service.NewFeedbackService(
		repository.NewShopRepository(db),
		repository.NewFeedbackRepository(db),
		service.DefaultDayPolicy(),
	)
	ctl := NewFeedbackController(feedbackSvc)

	router := gin.New()
	router.POST("/api/feedback/:shopId", ctl.Submit)
	return router, db
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ==================== 提交接口测试 ====================

func TestSubmitFeedback_Success(t *testing.T) {
	router, db := setupFeedbackRouter(t)

	db.Create(&model.Shop{
		BaseModel:       model.BaseModel{ID: 201},
		AdminID:         1,
		ShopName:        "API Shop",
		GoogleReviewURL: "https://g.page/r/api",
		CouponEnabled:   true,
		CouponCode:      "API10",
	})

	w := performRequest(router, "POST", "/api/feedback/201", map[string]interface{}{
		"rating":   5,
		"deviceId": "dev-api-1",
		"comment":  "nice",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)

	assert.Equal(t, true, resp["showGoogleReview"])
	assert.Equal(t, "https://g.page/r/api", resp["googleReviewUrl"])
	assert.Equal(t, true, resp["showCoupon"])
	assert.Equal(t, "API10", resp["couponCode"])
}

func TestSubmitFeedback_InvalidShop(t *testing.T) {
	router, _ := setupFeedbackRouter(t)

	tests := []struct {
		name string
		path string
	}{
		{"非数字ID", "/api/feedback/abc"},
		{"不存在的店铺", "/api/feedback/98765"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, "POST", tt.path, map[string]interface{}{
				"rating":   5,
				"deviceId": "dev-1",
			})
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp map[string]interface{}
			json.Unmarshal(w.Body.Bytes(), &resp)
			assert.Equal(t, "Invalid shop", resp["message"])
		})
	}
}

func TestSubmitFeedback_InvalidPayload(t *testing.T) {
	router, db := setupFeedbackRouter(t)

	db.Create(&model.Shop{
		BaseModel: model.BaseModel{ID: 202},
		AdminID:   1,
		ShopName:  "Strict Shop",
	})

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"缺少评分", map[string]interface{}{"deviceId": "dev-1"}},
		{"评分越界", map[string]interface{}{"rating": 6, "deviceId": "dev-1"}},
		{"缺少设备ID", map[string]interface{}{"rating": 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, "POST", "/api/feedback/202", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSubmitFeedback_QuotaExceeded(t *testing.T) {
	router, db := setupFeedbackRouter(t)

	db.Create(&model.Shop{
		BaseModel:                  model.BaseModel{ID: 203},
		AdminID:                    1,
		ShopName:                   "Once Shop",
		MaxFeedbackPerDevicePerDay: 1,
	})

	// 当天已有一条
	db.Create(&model.Feedback{
		BaseModel: model.BaseModel{CreatedAt: time.Now().UTC()},
		ShopID:    203, DeviceID: "dev-q", Rating: 5,
	})

	w := performRequest(router, "POST", "/api/feedback/203", map[string]interface{}{
		"rating":   4,
		"deviceId": "dev-q",
	})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "You already submitted feedback today. Please try again tomorrow.", resp["message"])
}

func TestSubmitFeedback_OriginRejected(t *testing.T) {
	router, db := setupFeedbackRouter(t)

	db.Create(&model.Shop{
		BaseModel:     model.BaseModel{ID: 204},
		AdminID:       1,
		ShopName:      "Origin Shop",
		WidgetOrigins: pq.StringArray{"https://shop.example.com"},
	})

	body, _ := json.Marshal(map[string]interface{}{"rating": 5, "deviceId": "dev-o"})
	req, _ := http.NewRequest("POST", "/api/feedback/204", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://evil.example.com")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
