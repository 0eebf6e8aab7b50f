package messaging

// Condensed HTML bodies for each step of the email sequence. Shared
// styling is deliberately inline so the messages render in every client.

const emailStyle = `
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background: #667eea; color: white; padding: 25px; text-align: center; }
.alert-header { background: #dc3545; color: white; padding: 25px; text-align: center; }
.content { background: #ffffff; padding: 25px; }
.savings { background: #f8f9fa; border-left: 4px solid #28a745; padding: 20px; margin: 20px 0; }
.cta { background: #28a745; color: white; padding: 20px; text-align: center; margin: 25px 0; border-radius: 8px; }
.warning { background: #fff3cd; border: 1px solid #ffeaa7; padding: 15px; border-radius: 5px; margin: 20px 0; }
.footer { color: #6c757d; font-size: 12px; margin-top: 30px; padding-top: 20px; border-top: 1px solid #dee2e6; }
`

const welcomeEmailTmpl = `<!DOCTYPE html>
<html><head><style>` + emailStyle + `</style></head>
<body><div class="container">
  <div class="header">
    <h1>Your Quote is Being Prepared</h1>
    <p>Pharmaceutical Waste Disposal Specialists</p>
  </div>
  <div class="content">
    <p><strong>Hello {{.Company}},</strong></p>
    <p>Your pharmaceutical waste disposal quote request is being processed right now.
       Based on your {{.Facility}} requirements, you're potentially looking at significant savings.</p>
    <div class="savings">
      <h3>Projected Monthly Savings</h3>
      <p style="font-size: 24px; font-weight: bold; color: #28a745;">${{.Savings.Monthly}}/month</p>
      <p>Annual savings: ${{.Savings.Annual}}</p>
      <p><em>Based on {{.Lead.VolumeRange}} volume {{.Facility}} with {{.Waste}} disposal needs</em></p>
    </div>
    <div class="cta">
      <h2>Get Your Quote Now</h2>
      <p>Call our specialist directly: <strong>{{.Phone}}</strong></p>
      <p>Available now for immediate pricing and setup</p>
    </div>
    <p><strong>What happens next:</strong></p>
    <ul>
      <li><strong>Next 2 hours:</strong> your custom quote will be ready</li>
      <li><strong>Today:</strong> our specialist will call you</li>
      <li><strong>Within 24 hours:</strong> service can be set up and running</li>
    </ul>
    <div class="warning">
      <p><strong>Compliance Alert:</strong> healthcare facilities are reporting 40% more
         regulatory audits this year. Don't wait until you're audited to ensure proper
         disposal documentation.</p>
    </div>
    <p>Best regards,<br><strong>Sarah Johnson</strong><br>Senior Waste Disposal Specialist</p>
    <div class="footer">
      <p>This email was sent to {{.Lead.Email}} because you requested a quote for
         pharmaceutical waste disposal services.</p>
      <p>Pharmaceutical Waste Disposal | EPA Certified | DEA Registered | {{.Phone}}</p>
    </div>
  </div>
</div></body></html>`

const quoteReadyEmailTmpl = `<!DOCTYPE html>
<html><head><style>` + emailStyle + `</style></head>
<body><div class="container">
  <div class="header" style="background: #28a745;">
    <h1>Your Custom Quote is Ready</h1>
    <p>Based on {{.Lead.VolumeRange}} volume {{.Facility}}</p>
  </div>
  <div class="content">
    <p><strong>Great news {{.Company}}!</strong></p>
    <p>Your pharmaceutical waste disposal quote has been prepared by our compliance team.
       You qualify for substantial savings:</p>
    <div class="savings" style="text-align: center;">
      <h2>Your Estimated Savings</h2>
      <p style="font-size: 32px; font-weight: bold; color: #28a745;">${{.Savings.Monthly}}/month</p>
      <p>${{.Savings.Annual}} annually vs your current costs</p>
      <p><strong>Quote includes:</strong> {{.Waste}} disposal, all compliance documentation,
         EPA &amp; DEA certified destruction, emergency pickup.</p>
    </div>
    <div class="cta" style="background: #dc3545;">
      <h3>Limited Time Offer</h3>
      <p>This pricing expires in 48 hours</p>
      <p>Call <strong>{{.Phone}}</strong> now</p>
    </div>
    <div class="warning">
      <p><strong>Compliance update:</strong> new pharmaceutical disposal audits starting next month.
         Facilities without proper documentation face fines up to $37,500/day.</p>
    </div>
    <p>Best regards,<br><strong>Sarah Johnson</strong><br>Senior Waste Disposal Specialist<br>Direct: {{.Phone}}</p>
    <div class="footer">
      <p><strong>Quote Reference:</strong> {{.QuoteRef}}</p>
      <p>This quote is valid for 48 hours and is based on current disposal rates.</p>
    </div>
  </div>
</div></body></html>`

const complianceAlertEmailTmpl = `<!DOCTYPE html>
<html><head><style>` + emailStyle + `</style></head>
<body><div class="container">
  <div class="alert-header">
    <h1>COMPLIANCE ALERT</h1>
    <p>Immediate Action Required - {{.Facility}}</p>
  </div>
  <div class="content">
    <p><strong>URGENT NOTICE for {{.Company}}</strong></p>
    <div class="warning">
      <h3>Regulatory Update for the {{.Lead.ZipCode}} Area</h3>
      <p><strong>EPA and state regulators have announced increased pharmaceutical waste
         audits for healthcare facilities in your area, effective immediately.</strong></p>
    </div>
    <p><strong>Your {{.Facility}} is at risk if you don't have:</strong></p>
    <ul>
      <li>Current waste manifests for all {{.Waste}} disposal</li>
      <li>DEA Form 41 witness certificates (controlled substances)</li>
      <li>EPA-certified disposal documentation</li>
      <li>Chain of custody records for the past 3 years</li>
    </ul>
    <div class="cta" style="background: #dc3545;">
      <h3>Deadline Approaching</h3>
      <p>Audits begin in the next 30 days. Penalties up to <strong>$37,500 per day</strong>.</p>
      <p>Emergency compliance line: <strong>{{.Phone}}</strong></p>
    </div>
    <p>We've helped 2,847+ facilities avoid compliance issues. Don't risk your license.</p>
    <p>Sarah Johnson<br>Senior Compliance Specialist<br>Direct: {{.Phone}}</p>
    <div class="footer">
      <p>This alert is based on public regulatory announcements and industry reports.</p>
    </div>
  </div>
</div></body></html>`

const successStoryEmailTmpl = `<!DOCTYPE html>
<html><head><style>` + emailStyle + `</style></head>
<body><div class="container">
  <div class="header" style="background: #28a745;">
    <h1>Real Customer Success Story</h1>
    <p>How {{.CaseStudy.Name}} Transformed Their Waste Management</p>
  </div>
  <div class="content">
    <p><strong>Dear {{.Company}} decision maker,</strong></p>
    <p>I wanted to share a recent success story from a {{.CaseStudy.Profile}} that had
       similar needs to yours:</p>
    <div class="savings">
      <p><strong>{{.CaseStudy.Name}}</strong> - {{.CaseStudy.Location}}</p>
      <p><strong>Facility:</strong> {{.CaseStudy.Profile}}</p>
      <p><strong>Waste types:</strong> {{.CaseStudy.Waste}}</p>
      <p><strong>Result:</strong> {{.CaseStudy.Saved}} annual savings, switched within {{.CaseStudy.Timeline}}</p>
    </div>
    <p>Based on your {{.Facility}} with {{.Lead.VolumeRange}} volume, you could save approximately:</p>
    <div class="cta">
      <p style="font-size: 24px; font-weight: bold;">${{.Savings.Monthly}}/month</p>
      <p>${{.Savings.Annual}} annually</p>
    </div>
    <p>Ready to see similar results? I can have your detailed savings analysis ready within the hour.</p>
    <p>Best regards,<br><strong>Sarah Johnson</strong><br>Senior Waste Disposal Specialist<br>Direct: {{.Phone}}</p>
    <div class="footer">
      <p>Case study results are typical but individual savings may vary.</p>
    </div>
  </div>
</div></body></html>`

const finalNoticeEmailTmpl = `<!DOCTYPE html>
<html><head><style>` + emailStyle + `</style></head>
<body><div class="container">
  <div class="alert-header">
    <h1>FINAL NOTICE</h1>
    <p>Your Quote Expires in 24 Hours</p>
  </div>
  <div class="content">
    <p><strong>This is our final automated notice for {{.Company}}.</strong></p>
    <p>Your pharmaceutical waste disposal quote is expiring tomorrow. One last chance
       to secure these savings:</p>
    <div class="cta">
      <h3>Your Locked-In Savings</h3>
      <p style="font-size: 28px; font-weight: bold;">${{.Savings.Monthly}}/month</p>
      <p>${{.Savings.Annual}} annually</p>
    </div>
    <div class="warning">
      <h3>Quote Expiration Countdown</h3>
      <p><strong>Less than 24 hours remaining.</strong> After this expires you'll need to
         restart the entire quote process, and current rates are increasing 8% on January 1st.</p>
    </div>
    <p>This is literally your last chance to secure these savings with one phone call:
       <strong>{{.Phone}}</strong></p>
    <p><strong>Sarah Johnson</strong><br>Senior Waste Disposal Specialist<br>Direct: {{.Phone}}</p>
    <div class="footer">
      <p><strong>Quote Reference:</strong> {{.QuoteRef}}</p>
      <p>This is the final automated email in your quote sequence.</p>
    </div>
  </div>
</div></body></html>`

const competitorIssuesEmailTmpl = `<!DOCTYPE html>
<html><head><style>` + emailStyle + `</style></head>
<body><div class="container">
  <div class="alert-header">
    <h1>INDUSTRY ALERT</h1>
    <p>Major Competitor Service Disruptions</p>
  </div>
  <div class="content">
    <p><strong>Important notice for {{.Company}}:</strong></p>
    <p>Multiple facilities in your area have reported serious issues with major
       pharmaceutical waste disposal companies: missed pickups (some facilities waiting
       3+ weeks), billing errors and hidden fees, missing compliance documentation, and
       15-25% rate hikes without notice.</p>
    <p>Many {{.Facility}} facilities are switching to more reliable providers.</p>
    <div class="savings">
      <h3>Why facilities choose us instead:</h3>
      <ul>
        <li>98% on-time pickup rate (vs industry average of 73%)</li>
        <li>30-40% cost savings with transparent pricing</li>
        <li>All compliance documentation automated</li>
        <li>Direct specialist access, no call centers</li>
        <li>No long-term contracts</li>
      </ul>
    </div>
    <p>I can have you switched over and compliant within 24 hours, with immediate cost
       savings. Call <strong>{{.Phone}}</strong>.</p>
    <p><strong>Sarah Johnson</strong><br>Senior Waste Disposal Specialist<br>Direct: {{.Phone}}</p>
    <div class="footer">
      <p>This alert is based on public reports and customer feedback from the
         pharmaceutical waste disposal industry.</p>
    </div>
  </div>
</div></body></html>`

const lastChanceEmailTmpl = `<!DOCTYPE html>
<html><head><style>` + emailStyle + `</style></head>
<body><div class="container">
  <div class="header" style="background: #343a40;">
    <h1>FINAL OUTREACH</h1>
    <p>Priority List Removal Notice</p>
  </div>
  <div class="content">
    <p><strong>This is my final personal outreach to {{.Company}}.</strong></p>
    <p>After 14 days of trying to connect with you about pharmaceutical waste disposal
       savings, I'm required to remove your facility from our priority follow-up list
       tomorrow. Future quotes will go through the standard 2-3 week process.</p>
    <div class="cta">
      <h3>One Final Opportunity</h3>
      <p>Call in the next 24 hours to maintain priority status: same-day quotes, direct
         specialist access, priority scheduling.</p>
      <p><strong>{{.Phone}}</strong></p>
    </div>
    <p>When the day comes that you need to make a change, wouldn't you rather have a
       relationship already established with a specialist who understands your
       {{.Facility}} operations?</p>
    <p><strong>Sarah Johnson</strong><br>Senior Waste Disposal Specialist<br>Direct: {{.Phone}}</p>
    <div class="footer">
      <p>This is the final email in your priority sequence. Future communications will be
         standard marketing only.</p>
    </div>
  </div>
</div></body></html>`

const adminNotificationTmpl = `<!DOCTYPE html>
<html><head><style>` + emailStyle + `</style></head>
<body><div class="container">
  <div class="header">
    <h1>{{.Priority}} PRIORITY LEAD</h1>
    <p>Score: {{.Lead.LeadScore}}/100</p>
  </div>
  <div class="content">
    <p><strong>New quote request received.</strong></p>
    <ul>
      <li><strong>Company:</strong> {{.Company}}</li>
      <li><strong>Email:</strong> {{.Lead.Email}}</li>
      <li><strong>Phone:</strong> {{.Lead.Phone}}</li>
      <li><strong>Facility:</strong> {{.Facility}}</li>
      <li><strong>Waste types:</strong> {{.Waste}}</li>
      <li><strong>Volume:</strong> {{.Lead.VolumeRange}}</li>
      <li><strong>ZIP:</strong> {{.Lead.ZipCode}}</li>
      <li><strong>Submissions:</strong> {{.Lead.SubmissionCount}}</li>
    </ul>
    <p>Projected savings pitch: ${{.Savings.Monthly}}/month (${{.Savings.Annual}}/year).</p>
  </div>
</div></body></html>`
