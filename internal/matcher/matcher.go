package matcher

import (
	"github.com/juancollazo-ch/evocon-changeover-service/internal/models"
)

// FindMatch busca el job cuyo campo de orden configurado coincide exactamente
// con la orden de producción extraída. Gana el primero en el orden del catálogo;
// los duplicados upstream no son error, se resuelven por posición.
// ok=false no es un error: el caller decide si prueba la siguiente estación.
func FindMatch(jobs []models.Job, productionOrderID string, field models.OrderIDField) (models.Job, bool) {
	if productionOrderID == "" {
		return models.Job{}, false
	}

	for _, job := range jobs {
		if job.OrderField(field) == productionOrderID {
			return job, true
		}
	}
	return models.Job{}, false
}
