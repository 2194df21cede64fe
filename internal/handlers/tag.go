package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhub-dev/taskhub/db"
	"github.com/taskhub-dev/taskhub/internal/models"
)

type CreateTagRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color" binding:"required"`
}

type TagResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func CreateTag(ctx *gin.Context) {
	var body CreateTagRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	tag := models.Tag{
		Name:  body.Name,
		Color: body.Color,
	}

	if err := db.DB.Create(&tag).Error; err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, TagResponse{ID: tag.ID, Name: tag.Name, Color: tag.Color})
}

func DeleteTag(ctx *gin.Context) {
	tagID := ctx.Param("tag_id")

	if err := db.DB.Where("tag_id = ?", tagID).Delete(&models.TaskTag{}).Error; err != nil {
		respondError(ctx, err)
		return
	}

	if err := db.DB.Delete(&models.Tag{}, "id = ?", tagID).Error; err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func ListTags(ctx *gin.Context) {
	var tags []models.Tag

	if err := db.DB.Find(&tags).Error; err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]TagResponse, 0, len(tags))

	for _, tag := range tags {
		response = append(response, TagResponse{ID: tag.ID, Name: tag.Name, Color: tag.Color})
	}

	ctx.JSON(http.StatusOK, response)
}
