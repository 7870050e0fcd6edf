// Package models defines the typed records exchanged with the inventory
// backend: employees, products, catalogs, assignments and user accounts.
package models

// UserProfile is the account information returned by /users/me and /users/.
type UserProfile struct {
	// ID is the backend identifier of the account.
	ID int `json:"id,omitempty"`
	// Username is the login name.
	Username string `json:"username"`
	// FullName is the display name shown in the dashboard header.
	FullName string `json:"full_name,omitempty"`
	// IsAdmin gates the administration commands.
	IsAdmin bool `json:"is_admin"`
	// IsActive reports whether the account may log in.
	IsActive bool `json:"is_active,omitempty"`
}

// LoginResponse is the body returned by POST /login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	// User is present on newer backend versions; older ones only
	// return the token and the profile comes from /users/me.
	User *UserProfile `json:"user,omitempty"`
}

// CatalogItem is one row of a reference catalog (área, empresa, cargo,
// tipo de equipo or ciudad).
type CatalogItem struct {
	ID     int    `json:"id"`
	Nombre string `json:"nombre"`
}

// Empleado is an employee record. The *_id fields are catalog references;
// the matching name fields are denormalized by the backend for display.
type Empleado struct {
	ID        int    `json:"id"`
	Nombre    string `json:"nombre"`
	AreaID    int    `json:"area_id"`
	Area      string `json:"area,omitempty"`
	CargoID   int    `json:"cargo_id"`
	Cargo     string `json:"cargo,omitempty"`
	EmpresaID int    `json:"empresa_id"`
	Empresa   string `json:"empresa,omitempty"`
	CiudadID  int    `json:"ciudad_id"`
	Ciudad    string `json:"ciudad,omitempty"`
	IsActive  bool   `json:"is_active"`
	// FechaRetiro is set when the employee has been retired.
	FechaRetiro string `json:"fecha_retiro,omitempty"`
}

// Estado returns the soft-delete state of the employee.
func (e Empleado) Estado() Estado { return estadoOf(e.IsActive) }

// Producto is an equipment record.
type Producto struct {
	ID             int    `json:"id"`
	Marca          string `json:"marca"`
	Referencia     string `json:"referencia,omitempty"`
	Serial         string `json:"serial,omitempty"`
	Procesador     string `json:"procesador,omitempty"`
	Ram            string `json:"ram,omitempty"`
	DiscoDuro      string `json:"disco_duro,omitempty"`
	TipoProductoID int    `json:"tipo_producto_id"`
	TipoProducto   string `json:"tipo_producto,omitempty"`
	IsActive       bool   `json:"is_active"`
	FechaRetiro    string `json:"fecha_retiro,omitempty"`
}

// Estado returns the soft-delete state of the product.
func (p Producto) Estado() Estado { return estadoOf(p.IsActive) }

// Asignacion links one employee to one product. It is retired, never
// deleted, when the equipment comes back.
type Asignacion struct {
	ID           int    `json:"id"`
	EmpleadoID   int    `json:"empleado_id"`
	ProductoID   int    `json:"producto_id"`
	SedeID       *int   `json:"sede_id,omitempty"`
	QuienEntrega string `json:"quien_entrega,omitempty"`
	Observacion  string `json:"observacion,omitempty"`
	FechaEntrega string `json:"fecha_entrega,omitempty"`
	FechaRetiro  string `json:"fecha_retiro,omitempty"`
	IsActive     bool   `json:"is_active"`

	// Empleado and Producto are embedded by the backend on list
	// responses so callers do not have to join client-side.
	Empleado *Empleado `json:"empleado,omitempty"`
	Producto *Producto `json:"producto,omitempty"`
}

// Estado returns the soft-delete state of the assignment.
func (a Asignacion) Estado() Estado { return estadoOf(a.IsActive) }

// UploadRowError describes one rejected row of a bulk upload.
type UploadRowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// UploadResult is the backend's response to /inventory/upload-masivo.
// Rows are processed independently, so a single upload can mix created
// assignments with rejected rows.
type UploadResult struct {
	Created    int              `json:"created"`
	FailedRows []UploadRowError `json:"failed_rows,omitempty"`
}
