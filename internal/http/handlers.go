package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"myfood/internal/app"
	"myfood/internal/domain"
	"myfood/internal/metrics"
)

type Server struct {
	engine  *gin.Engine
	sys     *app.System
	metrics *metrics.ServerMetrics
	log     *slog.Logger
}

func NewServer(sys *app.System, m *metrics.ServerMetrics, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	r := gin.New()
	r.Use(requestID(), requestLogger(log), m.Middleware(), gin.Recovery())
	s := &Server{engine: r, sys: sys, metrics: m, log: log}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	v1 := s.engine.Group("/api/v1")
	{
		users := v1.Group("/users")
		users.POST("/customers", s.registerCustomer)
		users.POST("/owners", s.registerOwner)
		users.GET("/:id/attributes/:name", s.userAttribute)
		v1.POST("/sessions", s.login)

		v1.POST("/businesses", s.createBusiness)
		v1.GET("/businesses/:id/attributes/:name", s.businessAttribute)
		v1.GET("/owners/:id/businesses", s.listBusinesses)
		v1.GET("/owners/:id/businesses/lookup", s.lookupBusiness)

		v1.POST("/businesses/:id/products", s.createProduct)
		v1.GET("/businesses/:id/products", s.listProducts)
		v1.GET("/businesses/:id/products/:name/attributes/:attr", s.productAttribute)
		v1.PUT("/products/:id", s.editProduct)

		orders := v1.Group("/orders")
		orders.POST("", s.createOrder)
		orders.POST("/:number/products", s.addProduct)
		orders.DELETE("/:number/products/:name", s.removeProduct)
		orders.POST("/:number/close", s.closeOrder)
		orders.GET("/:number/attributes/:name", s.orderAttribute)
		v1.GET("/customers/:id/orders/lookup", s.lookupOrder)

		admin := v1.Group("/admin")
		admin.POST("/reset", s.reset)
		admin.POST("/save", s.save)
	}
}

type idResp struct {
	ID int64 `json:"id"`
}

type numberResp struct {
	Number int64 `json:"number"`
}

type valueResp struct {
	Value string `json:"value"`
}

// User handlers
type registerCustomerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
}

// @Summary Register customer
// @Tags users
// @Accept json
// @Produce json
// @Param input body registerCustomerReq true "Customer"
// @Success 201 {object} idResp
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /users/customers [post]
func (s *Server) registerCustomer(c *gin.Context) {
	var req registerCustomerReq
	if !s.bind(c, &req) {
		return
	}
	id, err := s.sys.Users.RegisterCustomer(c, req.Name, req.Email, req.Password, req.Address)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, idResp{ID: int64(id)})
}

type registerOwnerReq struct {
	registerCustomerReq
	CPF string `json:"cpf"`
}

// @Summary Register business owner
// @Tags users
// @Accept json
// @Produce json
// @Param input body registerOwnerReq true "Owner"
// @Success 201 {object} idResp
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /users/owners [post]
func (s *Server) registerOwner(c *gin.Context) {
	var req registerOwnerReq
	if !s.bind(c, &req) {
		return
	}
	id, err := s.sys.Users.RegisterOwner(c, req.Name, req.Email, req.Password, req.Address, req.CPF)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, idResp{ID: int64(id)})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// @Summary Log in
// @Tags users
// @Accept json
// @Produce json
// @Param input body loginReq true "Credentials"
// @Success 200 {object} idResp
// @Failure 401 {object} map[string]string
// @Router /sessions [post]
func (s *Server) login(c *gin.Context) {
	var req loginReq
	if !s.bind(c, &req) {
		return
	}
	id, err := s.sys.Users.Login(c, req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, idResp{ID: int64(id)})
}

// @Summary Read user attribute
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Param name path string true "Attribute"
// @Success 200 {object} valueResp
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /users/{id}/attributes/{name} [get]
func (s *Server) userAttribute(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	v, err := s.sys.Users.Attribute(c, domain.UserID(id), c.Param("name"))
	s.value(c, v, err)
}

// Business handlers
type createBusinessReq struct {
	Kind    string `json:"kind"`
	OwnerID int64  `json:"owner_id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Cuisine string `json:"cuisine"`
}

// @Summary Create business
// @Tags businesses
// @Accept json
// @Produce json
// @Param input body createBusinessReq true "Business"
// @Success 201 {object} idResp
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /businesses [post]
func (s *Server) createBusiness(c *gin.Context) {
	var req createBusinessReq
	if !s.bind(c, &req) {
		return
	}
	id, err := s.sys.Businesses.Create(c, req.Kind, domain.UserID(req.OwnerID), req.Name, req.Address, req.Cuisine)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, idResp{ID: int64(id)})
}

// @Summary List businesses of an owner
// @Tags businesses
// @Produce json
// @Param id path int true "Owner ID"
// @Success 200 {object} valueResp
// @Failure 400 {object} map[string]string
// @Router /owners/{id}/businesses [get]
func (s *Server) listBusinesses(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	v, err := s.sys.Businesses.ListForOwner(c, domain.UserID(id))
	s.value(c, v, err)
}

// @Summary Find the n-th business of an owner with a given name
// @Tags businesses
// @Produce json
// @Param id path int true "Owner ID"
// @Param name query string true "Business name"
// @Param index query int true "Zero-based index"
// @Success 200 {object} idResp
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /owners/{id}/businesses/lookup [get]
func (s *Server) lookupBusiness(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	index, ok := s.queryIndex(c)
	if !ok {
		return
	}
	bid, err := s.sys.Businesses.ResolveIndex(c, domain.UserID(id), c.Query("name"), index)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, idResp{ID: int64(bid)})
}

// @Summary Read business attribute
// @Tags businesses
// @Produce json
// @Param id path int true "Business ID"
// @Param name path string true "Attribute"
// @Success 200 {object} valueResp
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /businesses/{id}/attributes/{name} [get]
func (s *Server) businessAttribute(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	v, err := s.sys.Businesses.Attribute(c, domain.BusinessID(id), c.Param("name"))
	s.value(c, v, err)
}

// Product handlers
type productReq struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price" swaggertype:"string" example:"10.50"`
	Category string          `json:"category"`
}

// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Param id path int true "Business ID"
// @Param input body productReq true "Product"
// @Success 201 {object} idResp
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /businesses/{id}/products [post]
func (s *Server) createProduct(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	var req productReq
	if !s.bind(c, &req) {
		return
	}
	pid, err := s.sys.Products.Create(c, domain.BusinessID(id), req.Name, req.Price, req.Category)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, idResp{ID: int64(pid)})
}

// @Summary Edit product
// @Tags products
// @Accept json
// @Param id path int true "Product ID"
// @Param input body productReq true "Product"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /products/{id} [put]
func (s *Server) editProduct(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	var req productReq
	if !s.bind(c, &req) {
		return
	}
	if err := s.sys.Products.Edit(c, domain.ProductID(id), req.Name, req.Price, req.Category); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary List business menu
// @Tags products
// @Produce json
// @Param id path int true "Business ID"
// @Success 200 {object} valueResp
// @Failure 404 {object} map[string]string
// @Router /businesses/{id}/products [get]
func (s *Server) listProducts(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	v, err := s.sys.Products.List(c, domain.BusinessID(id))
	s.value(c, v, err)
}

// @Summary Read product attribute
// @Tags products
// @Produce json
// @Param id path int true "Business ID"
// @Param name path string true "Product name"
// @Param attr path string true "Attribute"
// @Success 200 {object} valueResp
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /businesses/{id}/products/{name}/attributes/{attr} [get]
func (s *Server) productAttribute(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	v, err := s.sys.Products.Attribute(c, c.Param("name"), domain.BusinessID(id), c.Param("attr"))
	s.value(c, v, err)
}

// Order handlers
type createOrderReq struct {
	CustomerID int64 `json:"customer_id"`
	BusinessID int64 `json:"business_id"`
}

// @Summary Create order
// @Tags orders
// @Accept json
// @Produce json
// @Param input body createOrderReq true "Order"
// @Success 201 {object} numberResp
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders [post]
func (s *Server) createOrder(c *gin.Context) {
	var req createOrderReq
	if !s.bind(c, &req) {
		return
	}
	n, err := s.sys.Orders.Create(c, domain.UserID(req.CustomerID), domain.BusinessID(req.BusinessID))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, numberResp{Number: int64(n)})
}

type addProductReq struct {
	ProductID int64 `json:"product_id"`
}

// @Summary Add product to order
// @Tags orders
// @Accept json
// @Param number path int true "Order number"
// @Param input body addProductReq true "Product"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{number}/products [post]
func (s *Server) addProduct(c *gin.Context) {
	n, ok := s.pathID(c, "number")
	if !ok {
		return
	}
	var req addProductReq
	if !s.bind(c, &req) {
		return
	}
	if err := s.sys.Orders.AddProduct(c, domain.OrderNumber(n), domain.ProductID(req.ProductID)); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Remove the first product with a name from an order
// @Tags orders
// @Param number path int true "Order number"
// @Param name path string true "Product name"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{number}/products/{name} [delete]
func (s *Server) removeProduct(c *gin.Context) {
	n, ok := s.pathID(c, "number")
	if !ok {
		return
	}
	if err := s.sys.Orders.RemoveProduct(c, domain.OrderNumber(n), c.Param("name")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Close order
// @Tags orders
// @Param number path int true "Order number"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /orders/{number}/close [post]
func (s *Server) closeOrder(c *gin.Context) {
	n, ok := s.pathID(c, "number")
	if !ok {
		return
	}
	if err := s.sys.Orders.Close(c, domain.OrderNumber(n)); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Read order attribute
// @Tags orders
// @Produce json
// @Param number path int true "Order number"
// @Param name path string true "Attribute"
// @Success 200 {object} valueResp
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{number}/attributes/{name} [get]
func (s *Server) orderAttribute(c *gin.Context) {
	n, ok := s.pathID(c, "number")
	if !ok {
		return
	}
	v, err := s.sys.Orders.Attribute(c, domain.OrderNumber(n), c.Param("name"))
	s.value(c, v, err)
}

// @Summary Find the n-th order of a customer at a business
// @Tags orders
// @Produce json
// @Param id path int true "Customer ID"
// @Param business_id query int true "Business ID"
// @Param index query int true "Zero-based index"
// @Success 200 {object} numberResp
// @Failure 400 {object} map[string]string
// @Router /customers/{id}/orders/lookup [get]
func (s *Server) lookupOrder(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	bid, err := parseID(c.Query("business_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid business_id"})
		return
	}
	index, ok := s.queryIndex(c)
	if !ok {
		return
	}
	n, err := s.sys.Orders.ResolveIndex(c, domain.UserID(id), domain.BusinessID(bid), index)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, numberResp{Number: int64(n)})
}

// Admin handlers

// @Summary Erase all data
// @Tags admin
// @Success 204
// @Router /admin/reset [post]
func (s *Server) reset(c *gin.Context) {
	s.sys.Reset(c)
	c.Status(http.StatusNoContent)
}

// @Summary Save all registries
// @Tags admin
// @Success 204
// @Router /admin/save [post]
func (s *Server) save(c *gin.Context) {
	s.sys.Shutdown(c)
	c.Status(http.StatusNoContent)
}

func (s *Server) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return false
	}
	return true
}

func (s *Server) pathID(c *gin.Context, name string) (int64, bool) {
	id, err := parseID(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func (s *Server) queryIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Query("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return 0, false
	}
	return index, true
}

func (s *Server) value(c *gin.Context, v string, err error) {
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, valueResp{Value: v})
}

func (s *Server) fail(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	if kind := domain.KindOf(err); kind != "" {
		s.metrics.Failures.WithLabelValues(string(kind)).Inc()
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("request.failed", "error", err, "request_id", c.GetString(requestIDKey))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func mapErrorToStatus(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindIndex:
		return http.StatusBadRequest
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict, domain.KindState:
		return http.StatusConflict
	case domain.KindAttribute:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
