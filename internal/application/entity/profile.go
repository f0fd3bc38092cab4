package entity

import "time"

// Profile - профиль участника сообщества
type Profile struct {
	UserID         string    `json:"userId"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"displayName"`
	Bio            string    `json:"bio"`
	Location       string    `json:"location"`
	Website        string    `json:"website"`
	ProfilePicture string    `json:"profilePicture"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ProfilePatch - частичное обновление профиля; пустые поля не трогаем
type ProfilePatch struct {
	DisplayName    string `json:"displayName" validate:"omitempty,max=100"`
	Bio            string `json:"bio" validate:"omitempty,max=1000"`
	Location       string `json:"location" validate:"omitempty,max=200"`
	Website        string `json:"website" validate:"omitempty,url,max=500"`
	ProfilePicture string `json:"profilePicture" validate:"omitempty,url,max=500"`
}

// DeleteAccountRequest - запрос удаления аккаунта.
// Удаление выполняется только при точном совпадении фразы с "DELETE".
type DeleteAccountRequest struct {
	Confirmation string `json:"confirmation" validate:"required"`
}

// DeleteConfirmationPhrase - строгая литеральная фраза подтверждения
const DeleteConfirmationPhrase = "DELETE"

// MemberSummary - строка каталога участников
type MemberSummary struct {
	UserID         string    `json:"userId"`
	DisplayName    string    `json:"displayName"`
	Location       string    `json:"location"`
	ProfilePicture string    `json:"profilePicture"`
	JoinedAt       time.Time `json:"joinedAt"`
}
