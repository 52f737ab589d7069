package service

import "errors"

// 订阅同步
var (
	ErrMalformedEvent  = errors.New("malformed subscription event")
	ErrUnknownCustomer = errors.New("no user for billing customer")
	ErrProductMismatch = errors.New("subscription product does not match this deployment")
	ErrUnknownPlan     = errors.New("no plan for subscription price")
)

// 实例开通
var (
	ErrUserNotFound              = errors.New("user not found")
	ErrNotSubscribed             = errors.New("user has no active subscription")
	ErrDomainTaken               = errors.New("domain already taken")
	ErrInstallationAlreadyExists = errors.New("user already has an installation")
	ErrProvisioningFailed        = errors.New("provisioning failed")
	ErrInvalidDatabaseName       = errors.New("invalid database name")
	ErrWeakPassword              = errors.New("password does not meet the policy")
	ErrInvalidEdition            = errors.New("invalid edition")
	ErrUnsupportedVersion        = errors.New("unsupported version")
	ErrInstallationNotFound      = errors.New("installation not found")
	ErrInvalidInstallationStatus = errors.New("invalid installation status")
)
