package repository

import "github.com/tu-usuario/gestion-pro/internal/domain/entity"

// EmpresaRepository define el puerto de persistencia para Empresa.
// Solo devuelve empresas no eliminadas (soft delete).
type EmpresaRepository interface {
	GetByID(id string) (*entity.Empresa, error)
	GetBySubdominio(subdominio string) (*entity.Empresa, error)
}
