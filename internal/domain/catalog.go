package domain

// Business бизнес, принимающий бронирования
type Business struct {
	ID       int64
	Name     string
	OwnerIDs []int64 // пользователи, управляющие календарём
}

// IsOwner проверяет, что пользователь управляет бизнесом
func (b *Business) IsOwner(userID int64) bool {
	for _, id := range b.OwnerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Service услуга бизнеса
type Service struct {
	ID              int64
	BusinessID      int64
	Name            string
	DurationMinutes int
	Price           float64
}

// Client клиент, от имени которого создаётся бронирование
type Client struct {
	ID   int64
	Name string
}
