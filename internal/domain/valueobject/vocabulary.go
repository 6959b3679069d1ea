package valueobject

import "github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"

type Category string

const (
	CategoryWebDevelopment    Category = "web-development"
	CategoryMobileDevelopment Category = "mobile-development"
	CategoryDesign            Category = "design"
	CategoryWriting           Category = "writing"
	CategoryMarketing         Category = "marketing"
	CategoryDataScience       Category = "data-science"
	CategoryOther             Category = "other"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryWebDevelopment, CategoryMobileDevelopment, CategoryDesign, CategoryWriting,
		CategoryMarketing, CategoryDataScience, CategoryOther:
		return true
	}
	return false
}

func NewCategory(value string) (Category, error) {
	c := Category(value)
	if !c.IsValid() {
		return "", apperror.Validation(map[string]string{"category": "некорректная категория"})
	}
	return c, nil
}

// Duration — ожидаемая длительность проекта.
type Duration string

const (
	DurationLessThanOneWeek  Duration = "less-than-1-week"
	DurationOneToFourWeeks   Duration = "1-to-4-weeks"
	DurationOneToThreeMonths Duration = "1-to-3-months"
	DurationThreeToSixMonths Duration = "3-to-6-months"
	DurationMoreThanSixMonth Duration = "more-than-6-months"
)

func (d Duration) IsValid() bool {
	switch d {
	case DurationLessThanOneWeek, DurationOneToFourWeeks, DurationOneToThreeMonths,
		DurationThreeToSixMonths, DurationMoreThanSixMonth:
		return true
	}
	return false
}

func NewDuration(value string) (Duration, error) {
	d := Duration(value)
	if !d.IsValid() {
		return "", apperror.Validation(map[string]string{"duration": "некорректная длительность проекта"})
	}
	return d, nil
}

// DeliveryTime — срок выполнения, который предлагает исполнитель в заявке.
type DeliveryTime string

const (
	DeliveryLessThanOneWeek   DeliveryTime = "less-than-1-week"
	DeliveryOneToTwoWeeks     DeliveryTime = "1-to-2-weeks"
	DeliveryTwoToFourWeeks    DeliveryTime = "2-to-4-weeks"
	DeliveryOneToTwoMonths    DeliveryTime = "1-to-2-months"
	DeliveryMoreThanTwoMonths DeliveryTime = "more-than-2-months"
)

func (d DeliveryTime) IsValid() bool {
	switch d {
	case DeliveryLessThanOneWeek, DeliveryOneToTwoWeeks, DeliveryTwoToFourWeeks,
		DeliveryOneToTwoMonths, DeliveryMoreThanTwoMonths:
		return true
	}
	return false
}

func NewDeliveryTime(value string) (DeliveryTime, error) {
	d := DeliveryTime(value)
	if !d.IsValid() {
		return "", apperror.Validation(map[string]string{"delivery_time": "некорректный срок выполнения"})
	}
	return d, nil
}

type Role string

const (
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
)

func (r Role) IsValid() bool {
	return r == RoleClient || r == RoleFreelancer
}
