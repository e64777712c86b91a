package email

const footerSource = `
<hr style="border: 1px solid #eee; margin: 20px 0;" />
<p style="color: #666; font-size: 12px;">
  You're receiving this email because you subscribed to our newsletter.
  <br />
  <a href="{{ unsubscribe_url }}" style="color: #666;">Unsubscribe</a>
</p>
</div>`

const welcomeSource = `<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
<h1 style="color: #333;">Welcome to Our Newsletter!</h1>
<p>Hi {{ name | default: "there" | escape }},</p>
<p>Thank you for subscribing to our newsletter. We're excited to share the best deals and products with you!</p>
<p>You'll receive updates about:</p>
<ul>
  <li>Latest product deals</li>
  <li>Exclusive discounts</li>
  <li>Product recommendations</li>
  <li>Special offers</li>
</ul>
<p>Stay tuned for our next update!</p>` + footerSource

const marketingSource = `<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
<h1 style="color: #333;">{{ subject | escape }}</h1>
{% if content != "" %}<div style="margin: 20px 0;">{{ content }}</div>{% endif %}
<div style="margin: 20px 0;">
{% for product in products %}
  <div style="border: 1px solid #eee; padding: 15px; margin-bottom: 15px; border-radius: 5px;">
    <h3 style="margin: 0 0 10px 0;">{{ product.title | escape }}</h3>
    <p style="color: #e53e3e; font-weight: bold; margin: 0 0 10px 0;">${{ product.price }}</p>
    <a href="{{ product.link }}" style="display: inline-block; background: #4a5568; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">View Deal</a>
  </div>
{% endfor %}
</div>` + footerSource

const newsletterSource = `<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
<h1 style="color: #333;">Your Weekly Deals Update</h1>
<div style="margin: 20px 0;">{{ content }}</div>` + footerSource
