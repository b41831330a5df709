package models

// SignUpRequest is the body of POST /api/auth/signup.
type SignUpRequest struct {
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required,min=8"`
	Role        Role   `json:"role" validate:"omitempty,oneof=admin user"`
	AdminKey    string `json:"adminKey"`
}

// SignInRequest is the body of POST /api/auth/signin.
type SignInRequest struct {
	EmailOrUsername string `json:"emailOrUsername" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

// CreateUserRequest is the body of POST /api/users. An omitted password is
// generated server-side under the signup policy.
type CreateUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"omitempty,min=8"`
	PhoneNumber string `json:"phoneNumber" validate:"required,min=8"`
}

// UpdateUserRequest is the body of PATCH /api/users. Nil fields are left
// unchanged.
type UpdateUserRequest struct {
	ID          string  `json:"_id" validate:"required"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Password    *string `json:"password" validate:"omitempty,min=8"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,min=8"`
	AvatarURL   *string `json:"avatarUrl" validate:"omitempty,url"`
}

// CreateVideoRequest is the body of POST /api/videos.
type CreateVideoRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	URL         string `json:"url" validate:"required,url"`
	Thumbnail   string `json:"thumbnail" validate:"required,url"`
	Duration    int    `json:"duration" validate:"required,min=1"`
	Points      int    `json:"points" validate:"min=0"`
}

// TokenPair is an issued access/refresh credential pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
