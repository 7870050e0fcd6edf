package models

// Input payloads sent on create and update calls. They carry validation
// tags so obviously broken forms are rejected before a request is made;
// the backend remains the authority on business rules.

// EmpleadoInput is the payload for creating or updating an employee.
type EmpleadoInput struct {
	Nombre    string `json:"nombre" validate:"required,min=2"`
	AreaID    int    `json:"area_id" validate:"required,gt=0"`
	CargoID   int    `json:"cargo_id" validate:"required,gt=0"`
	EmpresaID int    `json:"empresa_id" validate:"required,gt=0"`
	CiudadID  int    `json:"ciudad_id" validate:"required,gt=0"`
}

// ProductoInput is the payload for creating or updating a product.
type ProductoInput struct {
	Marca          string `json:"marca" validate:"required"`
	Referencia     string `json:"referencia,omitempty"`
	Serial         string `json:"serial,omitempty"`
	Procesador     string `json:"procesador,omitempty"`
	Ram            string `json:"ram,omitempty"`
	DiscoDuro      string `json:"disco_duro,omitempty"`
	TipoProductoID int    `json:"tipo_producto_id" validate:"required,gt=0"`
}

// CatalogInput is the payload for creating or renaming a catalog item.
type CatalogInput struct {
	Nombre string `json:"nombre" validate:"required"`
}

// AsignacionInput is the payload for assigning one product to one
// employee. The bulk flow sends one of these per selected product.
type AsignacionInput struct {
	EmpleadoID   int    `json:"empleado_id" validate:"required,gt=0"`
	ProductoID   int    `json:"producto_id" validate:"required,gt=0"`
	SedeID       *int   `json:"sede_id" validate:"omitempty,gt=0"`
	QuienEntrega string `json:"quien_entrega,omitempty"`
	Observacion  string `json:"observacion,omitempty"`
}

// UserInput is the payload for creating or updating a user account.
// Password may be empty on update to keep the current one.
type UserInput struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password,omitempty" validate:"omitempty,min=6"`
	FullName string `json:"full_name" validate:"required"`
	IsAdmin  bool   `json:"is_admin"`
	IsActive *bool  `json:"is_active,omitempty"`
}
