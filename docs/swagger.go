package docs

// @title           Ride Booking API
// @version         1.0
// @description     Ride booking service handles ride offers and requests, booking lifecycle (request, accept, reject, update, cancel), automatic expiry of stale records, and a live admin event feed.

// @host      localhost:3000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
