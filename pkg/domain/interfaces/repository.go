package interfaces

type Repository interface {
	Session() SessionRepository
}
