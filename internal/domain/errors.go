package domain

import (
	"errors"

	"github.com/vladislavdragonenkov/shop/internal/listing"
)

// Ошибки валидации входных данных.
var (
	// ErrProductIDsRequired — checkout без единого товара.
	ErrProductIDsRequired = errors.New("product_ids are required")
	// ErrCheckoutAmbiguous — переданы одновременно product_ids и items.
	ErrCheckoutAmbiguous = errors.New("use either product_ids or items, not both")
	// ErrProductIDInvalid — идентификатор товара должен быть положительным.
	ErrProductIDInvalid = errors.New("product id must be positive")
	// ErrItemQtyInvalid — количество в позиции должно быть больше нуля.
	ErrItemQtyInvalid = errors.New("item quantity must be greater than zero")
	// ErrItemsRequired — заказ без позиций не имеет смысла.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// ErrUserRequired — у заказа или отзыва нет владельца.
	ErrUserRequired = errors.New("user_id is required")
	// ErrAmountMismatch — сумма заказа не совпадает с суммой позиций.
	ErrAmountMismatch = errors.New("order total does not match items sum")
	// ErrItemPriceInvalid — цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// ErrRatingRequired — в отзыве нет оценки.
	ErrRatingRequired = errors.New("rating is required")
	// ErrRatingOutOfRange — оценка вне диапазона 1..5.
	ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")
	// ErrCommentRequired — пустой текст отзыва.
	ErrCommentRequired = errors.New("comment is required")
	// ErrEmailInvalid — email без "@" или с пустой частью.
	ErrEmailInvalid = errors.New("email is invalid")
	// ErrPasswordTooShort — пароль короче минимальной длины.
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	// ErrCredentialsRequired — в запросе логина нет email или пароля.
	ErrCredentialsRequired = errors.New("email and password are required")
	// ErrNameRequired — у продавца или товара пустое имя.
	ErrNameRequired = errors.New("name is required")
	// ErrPriceNegative — цена товара меньше нуля.
	ErrPriceNegative = errors.New("price must be non-negative")
)

// Ошибки отсутствующих сущностей.
var (
	// ErrUserNotFound — пользователь не найден или уже удалён.
	ErrUserNotFound = errors.New("user not found")
	// ErrVendorNotFound — ссылка на несуществующего продавца.
	ErrVendorNotFound = errors.New("vendor not found")
	// ErrProductNotFound — товар с таким id не существует.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound — заказа нет или он принадлежит другому пользователю.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOutboxMessageNotFound возвращается при отметке несуществующего сообщения.
	ErrOutboxMessageNotFound = errors.New("outbox message not found")
)

// Ошибки аутентификации и конфликтов.
var (
	// ErrInvalidCredentials — неизвестный email или неверный пароль.
	ErrInvalidCredentials = errors.New("bad email or password")
	// ErrUnauthorized — отсутствующий, просроченный или поддельный токен.
	ErrUnauthorized = errors.New("missing or invalid bearer token")
	// ErrEmailTaken — пользователь с таким email уже существует.
	ErrEmailTaken = errors.New("email is already registered")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

var validationErrors = []error{
	ErrProductIDsRequired, ErrCheckoutAmbiguous, ErrProductIDInvalid, ErrItemQtyInvalid,
	ErrItemsRequired, ErrUserRequired, ErrAmountMismatch, ErrItemPriceInvalid,
	ErrRatingRequired, ErrRatingOutOfRange, ErrCommentRequired, ErrEmailInvalid,
	ErrPasswordTooShort, ErrCredentialsRequired, ErrNameRequired, ErrPriceNegative,
	listing.ErrInvalidQuery,
}

var notFoundErrors = []error{
	ErrUserNotFound, ErrVendorNotFound, ErrProductNotFound, ErrOrderNotFound, ErrOutboxMessageNotFound,
}

// IsValidation проверяет, относится ли ошибка к некорректному вводу (HTTP 400).
func IsValidation(err error) bool {
	return isAny(err, validationErrors)
}

// IsNotFound проверяет, ссылается ли ошибка на отсутствующую сущность (HTTP 404).
func IsNotFound(err error) bool {
	return isAny(err, notFoundErrors)
}

// IsAuth проверяет, является ли ошибка ошибкой аутентификации (HTTP 401).
func IsAuth(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrUnauthorized)
}

// IsConflict проверяет, является ли ошибка конфликтом уникальности (HTTP 409).
func IsConflict(err error) bool {
	return errors.Is(err, ErrEmailTaken)
}

func isAny(err error, targets []error) bool {
	if err == nil {
		return false
	}
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
