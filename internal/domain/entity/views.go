package entity

import "github.com/google/uuid"

// BidWithFreelancer — заявка с публичными данными исполнителя.
type BidWithFreelancer struct {
	Bid        *Bid
	Freelancer *PublicUser
}

type BidWithProject struct {
	Bid     *Bid
	Project *Project
}

// ProjectDetails собирает проект и связанные записи для карточки проекта.
type ProjectDetails struct {
	Project    *Project
	Client     *PublicUser
	Freelancer *PublicUser
	Bids       []BidWithFreelancer
	Contract   *Contract
}

// LookupUser достаёт пользователя из результата UserDirectory, nil если его нет.
func LookupUser(users map[uuid.UUID]PublicUser, id uuid.UUID) *PublicUser {
	if u, ok := users[id]; ok {
		return &u
	}
	return nil
}
