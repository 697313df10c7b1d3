package converter

import (
	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/domain/entity"
)

func ProductToResponse(product *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Category:    product.Category,
		Price:       product.Price,
		Stock:       product.Stock,
		ImageURL:    product.ImageURL,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

func CartItemsToResponses(items []entity.CartItem) []dto.CartItemResponse {
	responses := make([]dto.CartItemResponse, len(items))
	for i, item := range items {
		responses[i] = dto.CartItemResponse{
			ID:        item.ID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Image:     item.Image,
			LineTotal: item.LineTotal(),
		}
	}
	return responses
}
