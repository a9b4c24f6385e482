package container

import (
	"strconv"

	"shay-b-io/api/internal/common"
	"shay-b-io/api/pkg/controllers"
	"shay-b-io/api/pkg/models"
	"shay-b-io/api/pkg/services"
	"shay-b-io/api/pkg/util"
)

type ServiceContainer struct {
	Provider          services.PaymentProvider
	OnboardingService services.OnboardingService
	DocumentService   services.DocumentService
	CheckoutService   services.CheckoutService

	OnboardingController *controllers.OnboardingController
	DocumentController   *controllers.DocumentController
	CheckoutController   *controllers.CheckoutController
}

func NewServiceContainer() *ServiceContainer {
	provider := services.NewStripeProvider(services.StripeConfig{
		SecretKey:           util.LoadEnvFor("STRIPE_SECRET_KEY"),
		Country:             util.LoadEnvOr("PLATFORM_COUNTRY", common.DEFAULT_COUNTRY),
		Currency:            util.LoadEnvOr("PLATFORM_CURRENCY", common.DEFAULT_CURRENCY),
		StatementDescriptor: util.LoadEnvOr("STATEMENT_DESCRIPTOR", common.DEFAULT_DESCRIPTOR),
		PlatformURL:         util.LoadEnvOr("PLATFORM_URL", "https://shay-b.netlify.app"),
		CallTimeout:         common.PROVIDER_CALL_TIMEOUT,
		MaxConcurrency:      common.MAX_PROVIDER_CONCURRENCY,
	})

	registry := services.NewSellerRepository(util.GetCollection(util.DB, "SellerAccount"))
	identity := services.NewIdentityRegistry(util.GetCollection(util.DB, "User"))

	onboardingService := services.NewOnboardingService(provider, registry, identity)
	documentService := services.NewDocumentService(provider, onboardingService)
	checkoutService := services.NewCheckoutService(
		provider,
		onboardingService,
		splitConfigFromEnv(),
		util.LoadEnvOr("CHECKOUT_SUCCESS_URL", "https://shay-b.netlify.app"+common.DEFAULT_SUCCESS_PATH),
		util.LoadEnvOr("CHECKOUT_CANCEL_URL", "https://shay-b.netlify.app"+common.DEFAULT_CANCEL_PATH),
	)

	return &ServiceContainer{
		Provider:          provider,
		OnboardingService: onboardingService,
		DocumentService:   documentService,
		CheckoutService:   checkoutService,

		OnboardingController: controllers.InitOnboardingController(onboardingService),
		DocumentController:   controllers.InitDocumentController(documentService),
		CheckoutController:   controllers.InitCheckoutController(checkoutService),
	}
}

func splitConfigFromEnv() models.SplitConfig {
	return models.SplitConfig{
		FeeBps:                envInt64("PLATFORM_FEE_BPS", common.DEFAULT_FEE_BPS),
		FixedFee:              models.Money(envInt64("PLATFORM_FIXED_FEE", common.DEFAULT_FIXED_FEE)),
		FlatShippingFee:       models.Money(envInt64("FLAT_SHIPPING_FEE", 0)),
		ShippingReducesPayout: util.LoadEnvFor("SHIPPING_REDUCES_PAYOUT") == "true",
		Currency:              util.LoadEnvOr("PLATFORM_CURRENCY", common.DEFAULT_CURRENCY),
	}
}

func envInt64(key string, def int64) int64 {
	raw := util.LoadEnvFor(key)
	if common.IsEmptyString(raw) {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		util.LogWarning("invalid integer for " + key + ", using default")
		return def
	}
	return v
}
