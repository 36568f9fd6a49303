package apperr

import "github.com/storelink/products-api/pkg/zerror"

// Predefined errors for the product API. Handlers and services wrap the
// underlying cause with WrapParent; the client only ever sees the message
// defined here.
var (
	ValidationErr = zerror.NewValidationFailed("VALIDATION_FAILED", "validation error")
	InvalidBody   = zerror.NewBadRequest("INVALID_BODY", "Invalid Body.")

	NotAuthorized        = zerror.NewUnauthorized("NOT_AUTHORIZED", "You are not authorized to do that.")
	InvalidToken         = zerror.NewUnauthorized("INVALID_TOKEN", "Invalid or expired token.")
	CreateLocationDenied = zerror.NewUnauthorized("CREATE_LOCATION_DENIED", "You cannot create products for locations which you are not a member of.")
	ModifyDenied         = zerror.NewUnauthorized("MODIFY_DENIED", "You do not have access to modify that product.")
	MoveLocationDenied   = zerror.NewUnauthorized("MOVE_LOCATION_DENIED", "You do not have access to move that product to that location.")
	LocationViewDenied   = zerror.NewUnauthorized("LOCATION_VIEW_DENIED", "You do not have access to products of that location.")

	ProductNotFound = zerror.NewNotFound("PRODUCT_NOT_FOUND", "Product not found.")
	ProductGone     = zerror.NewGone("PRODUCT_GONE", "Entity is gone.")

	SaveFailed   = zerror.NewInternalServerError("SAVE_FAILED", "An Error occurred.")
	DeleteFailed = zerror.NewInternalServerError("DELETE_FAILED", "An Error occurred.")
)
