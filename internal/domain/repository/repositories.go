package repository

// Repositories agrupa los puertos del almacén jerárquico. Dentro de una transacción
// todos comparten la misma tx (ver ports.TxRunner).
type Repositories struct {
	Companies CompanyRepository
	Depots    DepotRepository
	Users     UserRepository
	Clients   ClientRepository
	Products  ProductRepository
}
