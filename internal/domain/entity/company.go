package entity

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Company representa una organización/tenant del sistema. Raíz de la jerarquía de propiedad.
type Company struct {
	ID        string
	Name      string
	NameKey   string // clave de unicidad derivada de Name (ver CompanyNameKey)
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CompanyNameKey normaliza el nombre para la restricción de unicidad:
// NFKC, plegado de mayúsculas y espacios colapsados. "ACME  Logística" == "acme logística".
func CompanyNameKey(name string) string {
	// Un Caser no es seguro entre goroutines: uno nuevo por llamada.
	folded := cases.Fold().String(norm.NFKC.String(name))
	return strings.Join(strings.Fields(folded), " ")
}

// Rename cambia el nombre y recalcula la clave de unicidad.
func (c *Company) Rename(name string) {
	c.Name = strings.TrimSpace(name)
	c.NameKey = CompanyNameKey(name)
}
