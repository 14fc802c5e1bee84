package auth

import "errors"

// ErrShopForbidden indicates the caller's token is not scoped to the shop.
var ErrShopForbidden = errors.New("auth: shop not in token scope")
