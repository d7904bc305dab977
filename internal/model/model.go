package model

import "time"

type Role string

const (
	RoleUser      Role = "USER"
	RoleLibrarian Role = "LIBRARIAN"
	RoleAdmin     Role = "ADMIN"
)

// IsStaff reports whether the role may act on resources it does not own.
func (r Role) IsStaff() bool {
	return r == RoleLibrarian || r == RoleAdmin
}

type User struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Email    string `json:"email" db:"email"`
	Password string `json:"-" db:"password"`
	Role     Role   `json:"role" db:"role"`
	Active   bool   `json:"active" db:"active"`
}

type Category struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

type Book struct {
	ID              int64  `json:"id" db:"id"`
	Title           string `json:"title" db:"title"`
	Author          string `json:"author" db:"author"`
	ISBN            string `json:"isbn" db:"isbn"`
	PublishedYear   int    `json:"publishedYear" db:"published_year"`
	AvailableCopies int    `json:"availableCopies" db:"available_copies"`
	CategoryID      *int64 `json:"categoryId,omitempty" db:"category_id"`
}

type Loan struct {
	ID         int64      `json:"id" db:"id"`
	UserID     int64      `json:"userId" db:"user_id"`
	BookID     int64      `json:"bookId" db:"book_id"`
	LoanDate   time.Time  `json:"loanDate" db:"loan_date"`
	DueDate    time.Time  `json:"dueDate" db:"due_date"`
	ReturnDate *time.Time `json:"returnDate" db:"return_date"`
}

// Active reports whether the loan is still open.
func (l Loan) Active() bool { return l.ReturnDate == nil }

type Notification struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	LoanID    *int64    `json:"loanId,omitempty" db:"loan_id"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	ReadFlag  bool      `json:"readFlag" db:"read_flag"`
}

type Review struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	BookID    int64     `json:"bookId" db:"book_id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type AuthRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

type UserCreateRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type UserUpdateRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"omitempty,min=6"`
	Role     Role   `json:"role" validate:"omitempty,oneof=USER LIBRARIAN ADMIN"`
}

type BookRequest struct {
	Title           string `json:"title" validate:"required"`
	Author          string `json:"author" validate:"required"`
	ISBN            string `json:"isbn" validate:"required"`
	PublishedYear   int    `json:"publishedYear" validate:"required,gte=1500"`
	AvailableCopies int    `json:"availableCopies" validate:"gte=0"`
	CategoryID      *int64 `json:"categoryId"`
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type ReviewCreateRequest struct {
	BookID  int64  `json:"bookId" validate:"required"`
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment"`
}

type LoanReport struct {
	TotalLoans   int `json:"totalLoans"`
	ActiveLoans  int `json:"activeLoans"`
	OverdueLoans int `json:"overdueLoans"`
}
