// service содержит бизнес-логику forum-store.
package service

import (
	"errors"

	"github.com/pribylovaa/go-forum-store/internal/config"
	"github.com/pribylovaa/go-forum-store/internal/storage"
)

var (
	// ErrInvalidArgument - неверные входные параметры запроса к сервису.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound - узла с таким id нет.
	ErrNotFound = errors.New("not found")
	// ErrParentNotFound - родитель для ответа не найден.
	ErrParentNotFound = errors.New("post not found")
	// ErrReferenceNotFound - ссылка не задана или цель отсутствует.
	ErrReferenceNotFound = errors.New("reference not found")
	// ErrInternal - внутренняя ошибка (хранилище/бэкенд/контекст).
	ErrInternal = errors.New("internal")
)

// Service - бизнес-логика форума поверх storage.Storage.
type Service struct {
	storage storage.Storage
	cfg     config.Config
}

// New создает новый экземпляр Service.
func New(storage storage.Storage, cfg config.Config) *Service {
	return &Service{
		storage: storage,
		cfg:     cfg,
	}
}
