package main

import (
	"ctb/src/utils"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

func stripeWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	api := apiGroup(g)
	api.POST("/webhook/stripe", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), whsecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		log.Printf("[StripeEvent] %s\n", event.Type)
		switch event.Type {
		case "checkout.session.completed":
			var cs stripe.CheckoutSession
			if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
				log.Printf("[Stripe] Error parsing CheckoutSession: %s\n", err.Error())
				break
			}
			bookingId, ok := bookingIdFromMetadata(cs.Metadata)
			if !ok {
				log.Printf("Could not retrieve booking id for session %s\n", cs.ID)
				break
			}
			if err := utils.MarkBookingPaid(bookingId); err != nil {
				log.Printf("Error marking booking [%d] paid: %s\n", bookingId, err.Error())
			}
		case "checkout.session.expired":
			var cs stripe.CheckoutSession
			if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
				log.Printf("[Stripe] Error parsing CheckoutSession: %s\n", err.Error())
				break
			}
			bookingId, ok := bookingIdFromMetadata(cs.Metadata)
			if !ok {
				log.Printf("Could not retrieve booking id for session %s\n", cs.ID)
				break
			}
			// Abandoned checkout: free the seats ahead of the timeout job.
			if err := utils.ReleaseBooking(bookingId); err != nil {
				log.Printf("Error releasing booking [%d]: %s\n", bookingId, err.Error())
			}
		}
		ctx.Status(http.StatusOK)
	})
	return api
}

func bookingIdFromMetadata(metadata map[string]string) (uint, bool) {
	id, ok := metadata["bookingId"]
	if !ok {
		return 0, false
	}
	parsed, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(parsed), true
}
