package handlers

import (
	"strconv"

	"github.com/ignatzorin/freelance-catalog/internal/models"
)

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// location возвращает путь созданной сущности для заголовка Location.
func location(resource models.Resource, id int64) string {
	return "/api/" + resource.Path + "/" + formatID(id)
}
